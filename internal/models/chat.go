// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation represents a private two-party conversation.
// Exactly two users participate; the pair is established once and reused.
// UserLowID/UserHighID hold the pair in normalized order so the unique index
// rejects a duplicate conversation between the same two users.
type Conversation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserLowID  uint           `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"-"`
	UserHighID uint           `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Users      []User         `gorm:"many2many:conversation_users;" json:"users,omitempty"`
	Messages   []Message      `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// NormalizePair sets the ordered pair columns from the two participant IDs.
func (c *Conversation) NormalizePair(userID1, userID2 uint) {
	if userID1 < userID2 {
		c.UserLowID, c.UserHighID = userID1, userID2
	} else {
		c.UserLowID, c.UserHighID = userID2, userID1
	}
}

// Message represents a chat message inside a conversation.
type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	Conversation   *Conversation  `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	Sender         *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Seen           bool           `gorm:"default:false;index" json:"seen"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// SenderName is not persisted; annotated at query time for history reads.
	SenderName string `gorm:"->" json:"sender_name,omitempty"`
}

// ConversationUser is the join table binding a user to a conversation.
type ConversationUser struct {
	ConversationID uint      `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
