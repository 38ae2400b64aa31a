package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/db"
)

// UserRepository provides data access for users, including the explicit
// cascade used when an account is removed.
type UserRepository struct {
	*Repository[db.User]
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{Repository: NewRepository[db.User](database), db: database}
}

// FindByEmail looks a user up by email, ignoring case. The stored value is
// left untouched.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// PotentialMatches returns swipe candidates for u.
//
// Behavior:
//   - Excludes u itself and everyone u has already liked.
//   - Candidate.gender must equal u.interested_in AND
//     candidate.interested_in must equal u.gender.
//   - Ordered by created_at ASC.
func (r *UserRepository) PotentialMatches(ctx context.Context, u *db.User) ([]db.User, error) {
	tx := r.db.WithContext(ctx)
	liked := tx.Model(&db.Like{}).Select("to_user_id").Where("from_user_id = ?", u.ID)

	var users []db.User
	err := tx.
		Where("id <> ?", u.ID).
		Where("id NOT IN (?)", liked).
		Where("gender = ? AND interested_in = ?", u.InterestedIn, u.Gender).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteCascade removes the user together with every like and message that
// references it, inside one transaction. Returns false when no user row existed.
//
// Order: likes (given + received) -> messages (sent + received) -> user.
func (r *UserRepository) DeleteCascade(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := NewTransactor(r.db).WithinTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("from_user_id = ? OR to_user_id = ?", id, id).Delete(&db.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", id, id).Delete(&db.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&db.User{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}
