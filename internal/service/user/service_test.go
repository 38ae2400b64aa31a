package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/db"
	"github.com/oggyb/matchbox/internal/domain"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/events"
	"github.com/oggyb/matchbox/internal/logger"
	"github.com/oggyb/matchbox/internal/service/user"
)

// setupService wires a UserService onto an isolated in-memory SQLite DB.
func setupService(t *testing.T) (*user.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	log := logger.Discard()
	bus := events.NewLocalBus[domain.Message](log)
	t.Cleanup(func() { bus.Close() })

	return user.NewUserService(app.New(gdb, bus, log)), gdb
}

func alice() user.RegisterInput {
	return user.RegisterInput{
		Email:        "alice@x.com",
		Password:     "secret",
		Name:         "Alice",
		Age:          25,
		Gender:       "female",
		InterestedIn: "male",
	}
}

func bob() user.RegisterInput {
	return user.RegisterInput{
		Email:        "bob@x.com",
		Password:     "secret",
		Name:         "Bob",
		Age:          30,
		Gender:       "male",
		InterestedIn: "female",
	}
}

func register(t *testing.T, svc *user.Service, in user.RegisterInput) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	return u
}

func userIDs(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	u := register(t, svc, alice())
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, 25, u.Age)

	// password is stored hashed
	var stored db.User
	require.NoError(t, gdb.First(&stored, "id = ?", u.ID).Error)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		in := alice()
		in.Email = "ALICE@x.com"
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.ErrorIs(t, err, svcErr.ErrConflict)
	})

	t.Run("underage", func(t *testing.T) {
		in := bob()
		in.Age = 17
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.ErrorIs(t, err, svcErr.ErrValidation)
		assert.Contains(t, err.Error(), "age")
	})

	t.Run("invalid email", func(t *testing.T) {
		in := bob()
		in.Email = "not-an-email"
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, svcErr.ErrValidation)
	})

	t.Run("missing name", func(t *testing.T) {
		in := bob()
		in.Name = ""
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, svcErr.ErrValidation)
	})

	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_KeepsEmailAsGiven(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	in := alice()
	in.Email = "Alice@Example.com"
	bio, location := "likes hiking", "Lisbon"
	in.Bio = &bio
	in.Location = &location
	in.Images = []string{"b.png", "a.png"}
	created := register(t, svc, in)
	assert.Equal(t, "Alice@Example.com", created.Email)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Name, got.Name)
	require.NotNil(t, got.Bio)
	assert.Equal(t, bio, *got.Bio)
	assert.Equal(t, in.Age, got.Age)
	assert.Equal(t, in.Gender, got.Gender)
	assert.Equal(t, in.InterestedIn, got.InterestedIn)
	require.NotNil(t, got.Location)
	assert.Equal(t, location, *got.Location)
	assert.Equal(t, in.Images, got.Images)

	found, err := svc.Authenticate(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Alice@Example.com", found.Email)
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := register(t, svc, alice())
	b := register(t, svc, bob())

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, userIDs(all))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := register(t, svc, alice())
	b := register(t, svc, bob())

	bio := "hello"
	age := 26
	got, err := svc.Update(ctx, a.ID, user.UpdateInput{Bio: &bio, Age: &age})
	require.NoError(t, err)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "hello", *got.Bio)
	assert.Equal(t, 26, got.Age)
	assert.Equal(t, "Alice", got.Name, "absent fields stay unchanged")

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", user.UpdateInput{Bio: &bio})
		assert.ErrorIs(t, err, svcErr.ErrNotFound)
	})

	t.Run("invalid age", func(t *testing.T) {
		young := 12
		_, err := svc.Update(ctx, a.ID, user.UpdateInput{Age: &young})
		assert.ErrorIs(t, err, svcErr.ErrValidation)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := svc.Update(ctx, a.ID, user.UpdateInput{Email: &b.Email})
		assert.ErrorIs(t, err, svcErr.ErrConflict)
	})

	t.Run("password change", func(t *testing.T) {
		pw := "new-secret"
		_, err := svc.Update(ctx, a.ID, user.UpdateInput{Password: &pw})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, "alice@x.com", "new-secret")
		assert.NoError(t, err)
		_, err = svc.Authenticate(ctx, "alice@x.com", "secret")
		assert.ErrorIs(t, err, svcErr.ErrValidation)
	})

	t.Run("images", func(t *testing.T) {
		imgs := []string{"a.jpg", "b.jpg"}
		got, err := svc.Update(ctx, a.ID, user.UpdateInput{Images: &imgs})
		require.NoError(t, err)
		assert.Equal(t, imgs, got.Images)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	a := register(t, svc, alice())
	b := register(t, svc, bob())
	_, err := svc.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&db.Message{Content: "hi", SenderID: b.ID, ReceiverID: a.ID}).Error)

	removed, err := svc.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	var likes, msgs int64
	require.NoError(t, gdb.Model(&db.Like{}).Count(&likes).Error)
	require.NoError(t, gdb.Model(&db.Message{}).Count(&msgs).Error)
	assert.Zero(t, likes)
	assert.Zero(t, msgs)

	removed, err = svc.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Get(ctx, b.ID)
	assert.NoError(t, err, "other users survive")
}

func TestLikeAndMatches(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := register(t, svc, alice())
	b := register(t, svc, bob())

	like, err := svc.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, like.FromUser.ID)
	assert.Equal(t, b.ID, like.ToUser.ID)

	liked, err := svc.ListLiked(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, userIDs(liked))

	matches, err := svc.ListMatches(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, matches, "one-way like is not a match")

	_, err = svc.Like(ctx, b.ID, a.ID)
	require.NoError(t, err)

	matches, err = svc.ListMatches(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, userIDs(matches))

	matches, err = svc.ListMatches(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, userIDs(matches))

	t.Run("duplicate like", func(t *testing.T) {
		_, err := svc.Like(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, svcErr.ErrConflict)
	})

	t.Run("self like", func(t *testing.T) {
		_, err := svc.Like(ctx, a.ID, a.ID)
		assert.ErrorIs(t, err, svcErr.ErrValidation)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := svc.Like(ctx, a.ID, "missing")
		assert.ErrorIs(t, err, svcErr.ErrNotFound)
	})
}

func TestListPotentialMatches(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := register(t, svc, alice())
	b := register(t, svc, bob())

	other := alice()
	other.Email = "carol@x.com"
	other.Name = "Carol"
	register(t, svc, other) // same gender as Alice, never a candidate for her

	got, err := svc.ListPotentialMatches(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, userIDs(got))

	_, err = svc.Like(ctx, a.ID, b.ID)
	require.NoError(t, err)

	got, err = svc.ListPotentialMatches(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got, "liked users are excluded")

	got, err = svc.ListPotentialMatches(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a := register(t, svc, alice())

	got, err := svc.Authenticate(ctx, "Alice@X.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "secret")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
