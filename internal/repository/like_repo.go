package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/db"
)

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to one-way likes and derived matches.
type LikeRepository struct {
	*Repository[db.Like]
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{Repository: NewRepository[db.Like](database), db: database}
}

// HasLiked checks whether from has liked to.
//
// Example:
//
//	repo.HasLiked(ctx, aliceID, bobID) // -> true if Alice liked Bob
func (r *LikeRepository) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Count(&count).Error
	return count > 0, err
}

// LikedUsers returns every user that userID has liked, oldest like first.
func (r *LikeRepository) LikedUsers(ctx context.Context, userID string) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("users.*").
		Joins("JOIN likes l ON l.to_user_id = users.id").
		Where("l.from_user_id = ?", userID).
		Order("l.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// MatchedUsers returns every user U such that userID liked U and U liked userID.
//
// Behavior:
//   - One self-join on likes instead of probing the reciprocal edge per row.
//   - Ordered by the time userID liked U, like LikedUsers.
func (r *LikeRepository) MatchedUsers(ctx context.Context, userID string) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("users.*").
		Joins("JOIN likes mine ON mine.to_user_id = users.id AND mine.from_user_id = ?", userID).
		Joins("JOIN likes theirs ON theirs.from_user_id = users.id AND theirs.to_user_id = ?", userID).
		Order("mine.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
