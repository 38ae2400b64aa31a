package messaging

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/matchbox/internal/app"
	"github.com/oggyb/matchbox/internal/db"
	"github.com/oggyb/matchbox/internal/domain"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/repository"
)

// Service persists chat messages and announces new ones on the message bus.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	messages *repository.MessageRepository
}

func NewMessagingService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// SendMessage stores a message and publishes it to live subscribers.
//
// Behavior:
//   - Content is stored as given; an empty string is a valid message.
//   - Sender and receiver must both exist (NotFoundError).
//   - The stored message starts unread.
//   - A failed publish is logged; the message is still returned as sent.
func (s *Service) SendMessage(ctx context.Context, content, senderID, receiverID string) (*domain.Message, error) {
	s.appCtx.Logger.Debug("SendMessage called", "sender", senderID, "receiver", receiverID)

	if err := s.ensureUser(ctx, senderID, "sender"); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, receiverID, "receiver"); err != nil {
		return nil, err
	}

	msg := db.Message{Content: content, SenderID: senderID, ReceiverID: receiverID}
	if err := s.messages.Create(ctx, &msg); err != nil {
		s.appCtx.Logger.Error("failed to store message", "sender", senderID, "err", err)
		return nil, err
	}

	stored, err := s.messages.Get(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	out := domain.NewMessage(*stored)

	if s.appCtx.Messages != nil {
		if err := s.appCtx.Messages.Publish(ctx, out); err != nil {
			s.appCtx.Logger.Warn("failed to publish message", "message", out.ID, "err", err)
		}
	}
	return &out, nil
}

// GetConversationThread returns every message exchanged between the two
// users in either direction, oldest first.
func (s *Service) GetConversationThread(ctx context.Context, userID, otherUserID string) ([]domain.Message, error) {
	msgs, err := s.messages.Thread(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return domain.NewMessages(msgs), nil
}

// ListConversations returns one summary per counterpart of userID, most
// recently active first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	msgs, err := s.messages.InvolvingDesc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildConversations(userID, domain.NewMessages(msgs)), nil
}

// BuildConversations groups messages (newest first) by counterpart. The first
// message seen for a counterpart is its last message; unread counts only
// include messages addressed to userID.
func BuildConversations(userID string, msgsDesc []domain.Message) []domain.Conversation {
	index := make(map[string]int)
	out := make([]domain.Conversation, 0)

	for _, m := range msgsDesc {
		other := m.Sender
		if m.Sender.ID == userID {
			other = m.Receiver
		}

		i, ok := index[other.ID]
		if !ok {
			i = len(out)
			index[other.ID] = i
			out = append(out, domain.Conversation{User: other, LastMessage: m})
		}
		if m.Receiver.ID == userID && !m.IsRead {
			out[i].UnreadCount++
		}
	}
	return out
}

// MarkMessageRead flags one message as read and returns it. When readerID is
// non-empty it must be the message's receiver.
func (s *Service) MarkMessageRead(ctx context.Context, messageID, readerID string) (*domain.Message, error) {
	msg, err := s.messages.Get(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("message %s not found", messageID)
	}
	if err != nil {
		return nil, err
	}
	if readerID != "" && readerID != msg.ReceiverID {
		return nil, svcErr.Validation("only the receiver can mark a message as read")
	}

	if !msg.IsRead {
		if err := s.messages.MarkRead(ctx, messageID); err != nil {
			return nil, err
		}
		msg.IsRead = true
	}
	out := domain.NewMessage(*msg)
	return &out, nil
}

// MarkConversationRead flags every unread message from otherUserID to userID
// as read. It succeeds even when nothing was unread.
func (s *Service) MarkConversationRead(ctx context.Context, userID, otherUserID string) (bool, error) {
	n, err := s.messages.MarkConversationRead(ctx, userID, otherUserID)
	if err != nil {
		return false, err
	}
	s.appCtx.Logger.Debug("conversation marked read", "user", userID, "other", otherUserID, "updated", n)
	return true, nil
}

// Subscribe opens a live feed of newly sent messages.
func (s *Service) Subscribe(ctx context.Context) (<-chan domain.Message, func(), error) {
	if s.appCtx.Messages == nil {
		return nil, nil, svcErr.External("message feed is not configured", nil)
	}
	sub, err := s.appCtx.Messages.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sub.C, sub.Close, nil
}

func (s *Service) ensureUser(ctx context.Context, id, role string) error {
	_, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("%s %s not found", role, id)
	}
	return err
}
