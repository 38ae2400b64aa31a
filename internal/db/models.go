package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered person. PasswordHash is never exposed on read paths.
//
// Indexes:
//   - unique email (duplicate registration is rejected by storage)
//   - idx_users_orientation(gender, interested_in) for potential match filtering
type User struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Email        string     `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	Name         string     `gorm:"size:128;not null"`
	Bio          *string    `gorm:"type:text"`
	Age          int        `gorm:"not null;default:18"`
	ProfileImage *string    `gorm:"size:512"`
	Images       StringList `gorm:"type:text"`
	Gender       string     `gorm:"size:32;not null;index:idx_users_orientation,priority:1"`
	InterestedIn string     `gorm:"size:32;not null;index:idx_users_orientation,priority:2"`
	Location     *string    `gorm:"size:255"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Like is a one-directional interest signal FromUser -> ToUser.
//
// Indexes:
//   - idx_likes_from_to(from_user_id, to_user_id) UNIQUE
//     At most one like per ordered pair; closes the duplicate-like race.
//   - idx_likes_to_from(to_user_id, from_user_id)
//     Reciprocal lookups for match computation.
type Like struct {
	ID         string    `gorm:"primaryKey;size:36"`
	FromUserID string    `gorm:"size:36;not null;uniqueIndex:idx_likes_from_to,priority:1;index:idx_likes_to_from,priority:2"`
	ToUserID   string    `gorm:"size:36;not null;uniqueIndex:idx_likes_from_to,priority:2;index:idx_likes_to_from,priority:1"`
	FromUser   *User     `gorm:"foreignKey:FromUserID"`
	ToUser     *User     `gorm:"foreignKey:ToUserID"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Message is one chat message. IsRead is the only mutable column.
//
// Indexes:
//   - idx_messages_pair(sender_id, receiver_id, created_at) for thread reads
//   - idx_messages_unread(receiver_id, is_read) for bulk mark-as-read
type Message struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Content    string    `gorm:"type:text;not null"`
	SenderID   string    `gorm:"size:36;not null;index:idx_messages_pair,priority:1"`
	ReceiverID string    `gorm:"size:36;not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_unread,priority:2"`
	Sender     *User     `gorm:"foreignKey:SenderID"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_messages_pair,priority:3"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// StringList stores an ordered list of strings as a JSON text column so the
// same schema works on MySQL, Postgres and SQLite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&User{}, &Like{}, &Message{}}
}
