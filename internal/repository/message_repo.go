package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/db"
)

// MessageRepository provides data access for chat messages. Reads always
// preload sender and receiver.
type MessageRepository struct {
	*Repository[db.Message]
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{Repository: NewRepository[db.Message](database), db: database}
}

// Get returns one message with both participants loaded.
func (r *MessageRepository) Get(ctx context.Context, id string) (*db.Message, error) {
	return r.FindByID(ctx, id, "Sender", "Receiver")
}

// Thread returns the full bidirectional history between a and b, oldest first.
func (r *MessageRepository) Thread(ctx context.Context, a, b string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// InvolvingDesc returns every message sent or received by userID, newest first.
func (r *MessageRepository) InvolvingDesc(ctx context.Context, userID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead sets is_read on one message. Callers re-read the row to decide
// whether it exists, since some drivers report zero affected rows when the
// flag was already set.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkConversationRead flags every unread message from otherID to userID as read.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, otherID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
