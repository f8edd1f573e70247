package service

import (
	"context"
	"log/slog"
	"strings"

	"wavelength/internal/models"
	"wavelength/internal/realtime"
	"wavelength/internal/repository"
)

const messageHistoryLimit = 100

// ConversationView is the shape returned when opening a conversation: the
// conversation itself, the counterpart user and the message history
// oldest-first.
type ConversationView struct {
	Conversation *models.Conversation `json:"conversation"`
	OtherUser    models.UserSummary   `json:"other_user"`
	Messages     []*models.Message    `json:"messages"`
}

// ChatService provides private messaging business logic.
type ChatService struct {
	chatRepo   repository.ChatRepository
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   *realtime.Notifier
}

// NewChatService returns a new ChatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	notifier *realtime.Notifier,
) *ChatService {
	return &ChatService{
		chatRepo:   chatRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// GetOrCreateConversation opens the conversation between the caller and the
// other user, creating it on first contact. It requires an accepted
// friendship; anything less reads as if the other user has no conversation
// to offer.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID, otherID uint) (*ConversationView, error) {
	if userID == otherID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}

	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	friendship, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if friendship == nil || friendship.Status != models.FriendshipStatusAccepted {
		return nil, models.NewNotFoundError("Friendship", otherID)
	}

	conv, err := s.chatRepo.FindBetween(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv, err = s.chatRepo.CreateBetween(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}
	}

	messages, err := s.chatRepo.GetMessages(ctx, conv.ID, messageHistoryLimit, 0)
	if err != nil {
		return nil, err
	}

	return &ConversationView{
		Conversation: conv,
		OtherUser:    other.Summary(),
		Messages:     messages,
	}, nil
}

// ListConversations returns every conversation the user participates in with
// its last message and unread count.
func (s *ChatService) ListConversations(ctx context.Context, userID uint) ([]repository.ConversationSummary, error) {
	return s.chatRepo.ListForUser(ctx, userID)
}

// GetMessages returns the conversation history for a participant.
func (s *ChatService) GetMessages(ctx context.Context, userID, convID uint, limit, offset int) ([]*models.Message, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > messageHistoryLimit {
		limit = messageHistoryLimit
	}
	return s.chatRepo.GetMessages(ctx, convID, limit, offset)
}

// SendMessage persists a message and fans it out to the conversation channel,
// excluding the sender's own connection.
func (s *ChatService) SendMessage(ctx context.Context, userID, convID uint, content, socketID string) (*models.Message, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Message is required")
	}
	if len(content) > models.MaxPostContentLength {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}

	msg := &models.Message{
		ConversationID: convID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if sender, err := s.userRepo.GetByID(ctx, userID); err == nil {
		msg.SenderName = sender.Name
	}

	s.publish(ctx, realtime.MessageSent{Message: msg, SocketID: socketID})

	return msg, nil
}

// Typing broadcasts an ephemeral typing indicator. Nothing is persisted.
func (s *ChatService) Typing(ctx context.Context, userID, convID uint, isTyping bool, socketID string) error {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	s.publish(ctx, realtime.UserTyping{
		ConversationID: convID,
		UserID:         userID,
		UserName:       user.Name,
		IsTyping:       isTyping,
		SocketID:       socketID,
	})
	return nil
}

// MarkSeen marks the other participant's messages as seen and reports how
// many were flipped.
func (s *ChatService) MarkSeen(ctx context.Context, userID, convID uint) (int64, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return 0, err
	}
	return s.chatRepo.MarkSeen(ctx, convID, userID)
}

func (s *ChatService) requireParticipant(ctx context.Context, convID, userID uint) error {
	if _, err := s.chatRepo.GetConversation(ctx, convID); err != nil {
		return err
	}
	ok, err := s.chatRepo.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You are not a participant of this conversation")
	}
	return nil
}

func (s *ChatService) publish(ctx context.Context, ev realtime.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		slog.Error("realtime publish failed", "event", ev.Name(), "channel", ev.Channel().String(), "error", err)
	}
}
