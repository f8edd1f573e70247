// Package realtime implements the live fan-out subsystem: private channels,
// channel authorization, the websocket hub and the Redis publish path.
package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelFamily identifies a class of private channels sharing one
// authorization rule.
type ChannelFamily string

const (
	// FamilyUser is the per-user private channel family ("user.<id>").
	FamilyUser ChannelFamily = "user"
	// FamilyConversation is the per-conversation channel family ("conversation.<id>").
	FamilyConversation ChannelFamily = "conversation"
)

// Channel is a parsed channel name: a family plus the entity ID.
type Channel struct {
	Family ChannelFamily
	ID     uint
}

// UserChannel returns the private channel for a user.
func UserChannel(userID uint) Channel {
	return Channel{Family: FamilyUser, ID: userID}
}

// ConversationChannel returns the private channel for a conversation.
func ConversationChannel(conversationID uint) Channel {
	return Channel{Family: FamilyConversation, ID: conversationID}
}

// String renders the wire form, e.g. "conversation.42".
func (c Channel) String() string {
	return string(c.Family) + "." + strconv.FormatUint(uint64(c.ID), 10)
}

// RedisChannel derives the Redis pub/sub channel carrying this channel's events.
func (c Channel) RedisChannel() string {
	return "rt:" + string(c.Family) + ":" + strconv.FormatUint(uint64(c.ID), 10)
}

// ParseChannel parses the wire form of a channel name. Unknown families and
// malformed IDs are rejected.
func ParseChannel(name string) (Channel, error) {
	family, rawID, ok := strings.Cut(name, ".")
	if !ok {
		return Channel{}, fmt.Errorf("malformed channel name %q", name)
	}
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || id == 0 {
		return Channel{}, fmt.Errorf("malformed channel id in %q", name)
	}
	switch ChannelFamily(family) {
	case FamilyUser, FamilyConversation:
		return Channel{Family: ChannelFamily(family), ID: uint(id)}, nil
	default:
		return Channel{}, fmt.Errorf("unknown channel family %q", family)
	}
}

// ParseRedisChannel maps a Redis pub/sub channel name back to the channel.
func ParseRedisChannel(name string) (Channel, error) {
	rest, ok := strings.CutPrefix(name, "rt:")
	if !ok {
		return Channel{}, fmt.Errorf("unexpected redis channel %q", name)
	}
	family, rawID, ok := strings.Cut(rest, ":")
	if !ok {
		return Channel{}, fmt.Errorf("unexpected redis channel %q", name)
	}
	return ParseChannel(family + "." + rawID)
}
