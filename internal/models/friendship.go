// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus represents the status of a friendship request.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a pending friendship request.
	FriendshipStatusPending FriendshipStatus = "pending"
	// FriendshipStatusAccepted indicates an accepted friendship request.
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	// FriendshipStatusRejected indicates a rejected friendship request.
	FriendshipStatusRejected FriendshipStatus = "rejected"
)

// Friendship represents a friendship relationship between two users.
// UserLowID/UserHighID hold the pair in normalized order so the unique index
// rejects a second row between the same two users regardless of who asked.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;index" json:"addressee_id"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	Status      FriendshipStatus `gorm:"type:varchar(20);default:'pending';index:idx_friendships_status" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relationships
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// BeforeCreate fills the normalized pair columns. Requester and addressee
// keep their original direction so sent and received pending requests stay
// distinguishable.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.RequesterID < f.AddresseeID {
		f.UserLowID, f.UserHighID = f.RequesterID, f.AddresseeID
	} else {
		f.UserLowID, f.UserHighID = f.AddresseeID, f.RequesterID
	}
	return nil
}

// Involves reports whether the given user is either side of the friendship.
func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// OtherUserID returns the counterpart of the given user in the friendship.
func (f *Friendship) OtherUserID(userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}
