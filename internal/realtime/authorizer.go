package realtime

import (
	"context"

	"wavelength/internal/repository"
)

// AuthorizeFunc decides whether the principal may subscribe to a channel of
// one family. Implementations must fail closed: any doubt or lookup error
// denies the subscription.
type AuthorizeFunc func(ctx context.Context, principalID uint, channelID uint) bool

// Authorizer maps channel families to their authorization rules. A channel
// whose family has no registered rule is always denied.
type Authorizer struct {
	rules map[ChannelFamily]AuthorizeFunc
}

// NewAuthorizer creates an empty authorizer registry.
func NewAuthorizer() *Authorizer {
	return &Authorizer{rules: make(map[ChannelFamily]AuthorizeFunc)}
}

// Register installs the rule for a channel family.
func (a *Authorizer) Register(family ChannelFamily, rule AuthorizeFunc) {
	a.rules[family] = rule
}

// Authorize evaluates the family's rule for the given principal and channel.
func (a *Authorizer) Authorize(ctx context.Context, principalID uint, ch Channel) bool {
	rule, ok := a.rules[ch.Family]
	if !ok {
		return false
	}
	return rule(ctx, principalID, ch.ID)
}

// NewDefaultAuthorizer wires the standard channel rules: a user channel
// belongs to exactly its own user, and a conversation channel admits only its
// participants. A missing conversation denies rather than errs.
func NewDefaultAuthorizer(chatRepo repository.ChatRepository) *Authorizer {
	a := NewAuthorizer()
	a.Register(FamilyUser, func(_ context.Context, principalID, channelID uint) bool {
		return principalID == channelID
	})
	a.Register(FamilyConversation, func(ctx context.Context, principalID, channelID uint) bool {
		ok, err := chatRepo.IsParticipant(ctx, channelID, principalID)
		if err != nil {
			return false
		}
		return ok
	})
	return a
}
