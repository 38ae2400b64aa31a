// Package domain holds the read-side shapes returned by services and
// serialized by the API. They never carry the credential hash.
package domain

import (
	"time"

	"github.com/oggyb/matchbox/internal/db"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Bio          *string   `json:"bio,omitempty"`
	Age          int       `json:"age"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	Images       []string  `json:"images,omitempty"`
	Gender       string    `json:"gender"`
	InterestedIn string    `json:"interestedIn"`
	Location     *string   `json:"location,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Like struct {
	ID        string    `json:"id"`
	FromUser  User      `json:"fromUser"`
	ToUser    User      `json:"toUser"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    User      `json:"sender"`
	Receiver  User      `json:"receiver"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation summarizes a user's history with one counterpart.
type Conversation struct {
	User        User    `json:"user"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
}

func NewUser(u db.User) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Bio:          u.Bio,
		Age:          u.Age,
		ProfileImage: u.ProfileImage,
		Images:       []string(u.Images),
		Gender:       u.Gender,
		InterestedIn: u.InterestedIn,
		Location:     u.Location,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func NewUsers(us []db.User) []User {
	out := make([]User, 0, len(us))
	for _, u := range us {
		out = append(out, NewUser(u))
	}
	return out
}

// NewMessage converts a stored message. Sender and Receiver must be loaded;
// a missing relation leaves only the id populated.
func NewMessage(m db.Message) Message {
	out := Message{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    User{ID: m.SenderID},
		Receiver:  User{ID: m.ReceiverID},
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
	if m.Sender != nil {
		out.Sender = NewUser(*m.Sender)
	}
	if m.Receiver != nil {
		out.Receiver = NewUser(*m.Receiver)
	}
	return out
}

func NewMessages(ms []db.Message) []Message {
	out := make([]Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMessage(m))
	}
	return out
}

// Involves reports whether userID sent or received m. An empty userID
// matches every message.
func (m Message) Involves(userID string) bool {
	return userID == "" || m.Sender.ID == userID || m.Receiver.ID == userID
}
