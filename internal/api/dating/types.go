// Package dating is the DatingService wire contract: request and response
// messages, the service descriptor and a typed client. Messages travel as
// JSON over gRPC (see CodecName).
package dating

import (
	"time"

	"github.com/oggyb/matchbox/internal/domain"
)

// --- users ---

type CreateUserRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Name         string   `json:"name"`
	Bio          *string  `json:"bio,omitempty"`
	Age          int      `json:"age"`
	ProfileImage *string  `json:"profileImage,omitempty"`
	Images       []string `json:"images,omitempty"`
	Gender       string   `json:"gender"`
	InterestedIn string   `json:"interestedIn"`
	Location     *string  `json:"location,omitempty"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type ListUsersRequest struct{}

// UpdateUserRequest carries only the fields to change.
type UpdateUserRequest struct {
	ID           string    `json:"id"`
	Email        *string   `json:"email,omitempty"`
	Password     *string   `json:"password,omitempty"`
	Name         *string   `json:"name,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	Age          *int      `json:"age,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	Images       *[]string `json:"images,omitempty"`
	Gender       *string   `json:"gender,omitempty"`
	InterestedIn *string   `json:"interestedIn,omitempty"`
	Location     *string   `json:"location,omitempty"`
}

type RemoveUserRequest struct {
	ID string `json:"id"`
}

type RemoveUserResponse struct {
	Removed bool `json:"removed"`
}

type LikeUserRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// UserIDRequest addresses a per-user listing (liked, matches, candidates,
// conversations).
type UserIDRequest struct {
	UserID string `json:"userId"`
}

type UsersResponse struct {
	Users []domain.User `json:"users"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ImageUploadRequest struct {
	UserID      string `json:"userId"`
	ContentType string `json:"contentType"`
}

type ImageUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ViewURL   string    `json:"viewUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- messages ---

type SendMessageRequest struct {
	Content    string `json:"content"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type ConversationRequest struct {
	UserID1 string `json:"userId1"`
	UserID2 string `json:"userId2"`
}

type MessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
}

// MarkAsReadRequest flips one message to read. ReaderID is optional; when
// set it must be the receiver.
type MarkAsReadRequest struct {
	MessageID string `json:"messageId"`
	ReaderID  string `json:"readerId,omitempty"`
}

type MarkConversationAsReadRequest struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// MessageAddedRequest opens the message-created stream. A non-empty UserID
// limits it to messages that user sent or received.
type MessageAddedRequest struct {
	UserID string `json:"userId,omitempty"`
}
