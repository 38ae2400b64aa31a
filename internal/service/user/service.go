package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/db"
	"github.com/oggyb/matchbox/internal/domain"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/repository"
	"github.com/oggyb/matchbox/internal/validation"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Bio          *string  `json:"bio,omitempty"`
	Age          int      `json:"age" validate:"required,min=18,max=100"`
	ProfileImage *string  `json:"profileImage,omitempty"`
	Images       []string `json:"images,omitempty"`
	Gender       string   `json:"gender" validate:"required"`
	InterestedIn string   `json:"interestedIn" validate:"required"`
	Location     *string  `json:"location,omitempty"`
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	Email        *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password     *string   `json:"password,omitempty" validate:"omitempty,min=1"`
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Bio          *string   `json:"bio,omitempty"`
	Age          *int      `json:"age,omitempty" validate:"omitempty,min=18,max=100"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	Images       *[]string `json:"images,omitempty"`
	Gender       *string   `json:"gender,omitempty" validate:"omitempty,min=1"`
	InterestedIn *string   `json:"interestedIn,omitempty" validate:"omitempty,min=1"`
	Location     *string   `json:"location,omitempty"`
}

// Service holds the user, like and match logic.
// Every method reads through to storage; nothing is cached between calls.
type Service struct {
	appCtx *app.AppContext
	tx     *repository.Transactor
	users  *repository.UserRepository
	likes  *repository.LikeRepository
}

func NewUserService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		tx:     repository.NewTransactor(appCtx.DB),
		users:  repository.NewUserRepository(appCtx.DB),
		likes:  repository.NewLikeRepository(appCtx.DB),
	}
}

// Register creates an account.
//
// Behavior:
//   - Validates email format, age in [18,100] and required fields.
//   - Rejects an email that is already registered, ignoring case (ConflictError).
//   - The email is stored exactly as given.
//   - Stores a bcrypt hash of the password; the hash is never returned.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	s.appCtx.Logger.Debug("Register called", "email", in.Email)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := db.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Bio:          in.Bio,
		Age:          in.Age,
		ProfileImage: in.ProfileImage,
		Images:       db.StringList(in.Images),
		Gender:       in.Gender,
		InterestedIn: in.InterestedIn,
		Location:     in.Location,
	}

	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		if _, err := users.FindByEmail(ctx, u.Email); err == nil {
			return svcErr.Conflict("email %s is already registered", u.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return users.Create(ctx, &u)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, svcErr.Conflict("email %s is already registered", u.Email)
	}
	if err != nil {
		s.appCtx.Logger.Error("Register failed", "email", in.Email, "err", err)
		return nil, err
	}

	out := domain.NewUser(u)
	return &out, nil
}

// Get returns the user or a NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.find(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	out := domain.NewUser(*u)
	return &out, nil
}

// List returns every user. There is no pagination.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewUsers(users), nil
}

// Update applies only the fields present in in and re-validates them.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	s.appCtx.Logger.Debug("Update called", "user", id)

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = string(hash)
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Age != nil {
		fields["age"] = *in.Age
	}
	if in.ProfileImage != nil {
		fields["profile_image"] = *in.ProfileImage
	}
	if in.Images != nil {
		fields["images"] = db.StringList(*in.Images)
	}
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	if in.InterestedIn != nil {
		fields["interested_in"] = *in.InterestedIn
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}

	var updated *db.User
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		current, err := s.find(ctx, users, id)
		if err != nil {
			return err
		}

		if in.Email != nil && *in.Email != current.Email {
			if _, err := users.FindByEmail(ctx, *in.Email); err == nil {
				return svcErr.Conflict("email %s is already registered", *in.Email)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if len(fields) > 0 {
			if _, err := users.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}
		updated, err = users.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, svcErr.Conflict("email is already registered")
	}
	if err != nil {
		return nil, err
	}

	out := domain.NewUser(*updated)
	return &out, nil
}

// Remove deletes the user and all of its likes and messages.
// Removing an unknown id returns false, not an error.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	s.appCtx.Logger.Debug("Remove called", "user", id)

	removed, err := s.users.DeleteCascade(ctx, id)
	if err != nil {
		s.appCtx.Logger.Error("DeleteCascade failed", "user", id, "err", err)
		return false, err
	}
	return removed, nil
}

// Like records that fromID likes toID.
//
// Behavior:
//   - Both users must exist (NotFoundError).
//   - Self-likes are rejected (ValidationError).
//   - A second like for the same ordered pair is rejected (ConflictError);
//     the unique (from,to) index closes the race between concurrent callers.
func (s *Service) Like(ctx context.Context, fromID, toID string) (*domain.Like, error) {
	s.appCtx.Logger.Debug("Like called", "from", fromID, "to", toID)

	if fromID == toID {
		return nil, svcErr.Validation("cannot like yourself")
	}

	var (
		like     db.Like
		from, to *db.User
	)
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		likes := repository.NewLikeRepository(tx)

		var err error
		if from, err = s.find(ctx, users, fromID); err != nil {
			return err
		}
		if to, err = s.find(ctx, users, toID); err != nil {
			return err
		}

		exists, err := likes.HasLiked(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if exists {
			return svcErr.Conflict("already liked")
		}

		like = db.Like{FromUserID: fromID, ToUserID: toID}
		return likes.Create(ctx, &like)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, svcErr.Conflict("already liked")
	}
	if err != nil {
		return nil, err
	}

	return &domain.Like{
		ID:        like.ID,
		FromUser:  domain.NewUser(*from),
		ToUser:    domain.NewUser(*to),
		CreatedAt: like.CreatedAt,
	}, nil
}

// ListLiked returns every user that userID has liked.
func (s *Service) ListLiked(ctx context.Context, userID string) ([]domain.User, error) {
	users, err := s.likes.LikedUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewUsers(users), nil
}

// ListMatches returns users with a like in both directions with userID.
func (s *Service) ListMatches(ctx context.Context, userID string) ([]domain.User, error) {
	users, err := s.likes.MatchedUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewUsers(users), nil
}

// ListPotentialMatches returns swipe candidates for userID, or an empty list
// when userID is unknown.
func (s *Service) ListPotentialMatches(ctx context.Context, userID string) ([]domain.User, error) {
	current, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	users, err := s.users.PotentialMatches(ctx, current)
	if err != nil {
		return nil, err
	}
	return domain.NewUsers(users), nil
}

// Authenticate checks an email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Validation("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, svcErr.Validation("invalid email or password")
	}
	out := domain.NewUser(*u)
	return &out, nil
}

func (s *Service) find(ctx context.Context, users *repository.UserRepository, id string) (*db.User, error) {
	u, err := users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user %s not found", id)
	}
	return u, err
}
