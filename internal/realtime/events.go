package realtime

import (
	"wavelength/internal/models"
)

// Event names on the wire.
const (
	EventFriendRequestSent          = "friend.request.sent"
	EventFriendRequestStatusChanged = "friend.request.status.changed"
	EventNotificationCreated        = "notification.created"
	EventMessageSent                = "message.sent"
	EventUserTyping                 = "user.typing"
)

// Exclusion names which of the actor's connections are skipped during
// delivery. The zero value excludes nobody. When SocketID is set only that
// connection is skipped; otherwise every connection of UserID is.
type Exclusion struct {
	UserID   uint   `json:"user_id,omitempty"`
	SocketID string `json:"socket_id,omitempty"`
}

// None reports whether the exclusion is empty.
func (e Exclusion) None() bool {
	return e.UserID == 0 && e.SocketID == ""
}

// Event is one variant of the closed set of realtime events. Each variant
// knows its wire name, target channel, delivery exclusion and payload.
type Event interface {
	Name() string
	Channel() Channel
	Exclusion() Exclusion
	Payload() interface{}
}

// FriendRequestSent is emitted to the requester's channel when a new request
// is created, confirming the send across the requester's devices.
type FriendRequestSent struct {
	Friendship *models.Friendship
}

func (e FriendRequestSent) Name() string         { return EventFriendRequestSent }
func (e FriendRequestSent) Channel() Channel     { return UserChannel(e.Friendship.RequesterID) }
func (e FriendRequestSent) Exclusion() Exclusion { return Exclusion{} }
func (e FriendRequestSent) Payload() interface{} {
	return map[string]interface{}{
		"friendship_id": e.Friendship.ID,
		"status":        e.Friendship.Status,
		"requester":     e.Friendship.Requester.Summary(),
		"addressee":     e.Friendship.Addressee.Summary(),
	}
}

// FriendRequestStatusChanged is emitted to the requester's channel when the
// addressee accepts or rejects.
type FriendRequestStatusChanged struct {
	Friendship *models.Friendship
}

func (e FriendRequestStatusChanged) Name() string     { return EventFriendRequestStatusChanged }
func (e FriendRequestStatusChanged) Channel() Channel { return UserChannel(e.Friendship.RequesterID) }
func (e FriendRequestStatusChanged) Exclusion() Exclusion { return Exclusion{} }
func (e FriendRequestStatusChanged) Payload() interface{} {
	return map[string]interface{}{
		"friendship_id": e.Friendship.ID,
		"status":        e.Friendship.Status,
		"addressee":     e.Friendship.Addressee.Summary(),
	}
}

// NotificationCreated is emitted to the recipient's channel whenever a ledger
// entry is written.
type NotificationCreated struct {
	Notification *models.Notification
}

func (e NotificationCreated) Name() string         { return EventNotificationCreated }
func (e NotificationCreated) Channel() Channel     { return UserChannel(e.Notification.UserID) }
func (e NotificationCreated) Exclusion() Exclusion { return Exclusion{} }
func (e NotificationCreated) Payload() interface{} { return e.Notification }

// MessageSent is emitted to the conversation channel, skipping the sender's
// own connection(s).
type MessageSent struct {
	Message  *models.Message
	SocketID string
}

func (e MessageSent) Name() string     { return EventMessageSent }
func (e MessageSent) Channel() Channel { return ConversationChannel(e.Message.ConversationID) }
func (e MessageSent) Exclusion() Exclusion {
	return Exclusion{UserID: e.Message.SenderID, SocketID: e.SocketID}
}
func (e MessageSent) Payload() interface{} { return e.Message }

// UserTyping is the ephemeral typing indicator; broadcast only, never stored.
type UserTyping struct {
	ConversationID uint
	UserID         uint
	UserName       string
	IsTyping       bool
	SocketID       string
}

func (e UserTyping) Name() string     { return EventUserTyping }
func (e UserTyping) Channel() Channel { return ConversationChannel(e.ConversationID) }
func (e UserTyping) Exclusion() Exclusion {
	return Exclusion{UserID: e.UserID, SocketID: e.SocketID}
}
func (e UserTyping) Payload() interface{} {
	return map[string]interface{}{
		"conversation_id": e.ConversationID,
		"user_id":         e.UserID,
		"name":            e.UserName,
		"is_typing":       e.IsTyping,
	}
}
