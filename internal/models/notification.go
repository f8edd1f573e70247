// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationKind enumerates the closed set of notification variants.
type NotificationKind string

const (
	// NotificationFriendRequestReceived is created for the addressee of a new friend request.
	NotificationFriendRequestReceived NotificationKind = "friend_request_received"
	// NotificationFriendRequestAccepted is created for the requester when a request is accepted.
	NotificationFriendRequestAccepted NotificationKind = "friend_request_accepted"
	// NotificationPostLiked is created for a post's author when someone else likes it.
	NotificationPostLiked NotificationKind = "post_liked"
	// NotificationPostCommented is created for a post's author when someone else comments.
	NotificationPostCommented NotificationKind = "post_commented"
)

// NotificationData is the typed payload stored with a notification.
// Which fields are set depends on the notification kind.
type NotificationData struct {
	FriendshipID uint   `json:"friendship_id,omitempty"`
	PostID       uint   `json:"post_id,omitempty"`
	LikeID       uint   `json:"like_id,omitempty"`
	CommentID    uint   `json:"comment_id,omitempty"`
	FromUserID   uint   `json:"from_user_id,omitempty"`
	FromUserName string `json:"from_user_name,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Value implements driver.Valuer so the payload is stored as a JSON column.
func (d NotificationData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (d *NotificationData) Scan(value interface{}) error {
	if value == nil {
		*d = NotificationData{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported notification data type %T", value)
	}
}

// Notification is a durable ledger entry for a user-facing event.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"type:varchar(40);not null;index" json:"kind"`
	Data      NotificationData `gorm:"type:json" json:"data"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns an opaque identifier.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NewFriendRequestReceived builds the ledger entry for a new incoming request.
func NewFriendRequestReceived(addresseeID uint, f *Friendship, from *User) *Notification {
	return &Notification{
		UserID: addresseeID,
		Kind:   NotificationFriendRequestReceived,
		Data: NotificationData{
			FriendshipID: f.ID,
			FromUserID:   from.ID,
			FromUserName: from.Name,
			Message:      fmt.Sprintf("%s sent you a friend request", from.Name),
		},
	}
}

// NewFriendRequestAccepted builds the ledger entry for the original requester.
func NewFriendRequestAccepted(requesterID uint, f *Friendship, from *User) *Notification {
	return &Notification{
		UserID: requesterID,
		Kind:   NotificationFriendRequestAccepted,
		Data: NotificationData{
			FriendshipID: f.ID,
			FromUserID:   from.ID,
			FromUserName: from.Name,
			Message:      fmt.Sprintf("%s accepted your friend request", from.Name),
		},
	}
}

// NewPostLiked builds the ledger entry for a post author whose post was liked.
func NewPostLiked(authorID uint, like *Like, from *User) *Notification {
	return &Notification{
		UserID: authorID,
		Kind:   NotificationPostLiked,
		Data: NotificationData{
			PostID:       like.PostID,
			LikeID:       like.ID,
			FromUserID:   from.ID,
			FromUserName: from.Name,
			Message:      fmt.Sprintf("%s liked your post", from.Name),
		},
	}
}

// NewPostCommented builds the ledger entry for a post author whose post was commented on.
func NewPostCommented(authorID uint, comment *Comment, from *User) *Notification {
	return &Notification{
		UserID: authorID,
		Kind:   NotificationPostCommented,
		Data: NotificationData{
			PostID:       comment.PostID,
			CommentID:    comment.ID,
			FromUserID:   from.ID,
			FromUserName: from.Name,
			Message:      fmt.Sprintf("%s commented on your post", from.Name),
		},
	}
}
