package repository

import (
	"context"
	"errors"

	"wavelength/internal/models"
	"wavelength/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationSummary is the projection returned by ListForUser: the
// conversation with its counterpart user, most recent message and the
// caller's unread count.
type ConversationSummary struct {
	Conversation *models.Conversation `json:"conversation"`
	OtherUser    *models.User         `json:"other_user"`
	LastMessage  *models.Message      `json:"last_message,omitempty"`
	UnreadCount  int64                `json:"unread_count"`
}

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	FindBetween(ctx context.Context, userID1, userID2 uint) (*models.Conversation, error)
	CreateBetween(ctx context.Context, userID1, userID2 uint) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]ConversationSummary, error)
	IsParticipant(ctx context.Context, convID, userID uint) (bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error)
	MarkSeen(ctx context.Context, convID, readerID uint) (int64, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindBetween locates the two-party conversation containing both users.
func (r *chatRepository) FindBetween(ctx context.Context, userID1, userID2 uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where(`EXISTS (SELECT 1 FROM conversation_users cu1 WHERE cu1.conversation_id = conversations.id AND cu1.user_id = ?)
			AND EXISTS (SELECT 1 FROM conversation_users cu2 WHERE cu2.conversation_id = conversations.id AND cu2.user_id = ?)`,
			userID1, userID2).
		Preload("Users").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

// CreateBetween creates the conversation and attaches both users. The unique
// (low, high) pair index absorbs a duplicate-create race: the loser re-reads
// the winner's conversation instead of inserting a second one.
func (r *chatRepository) CreateBetween(ctx context.Context, userID1, userID2 uint) (*models.Conversation, error) {
	conv := &models.Conversation{}
	conv.NormalizePair(userID1, userID2)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).Create(conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race; pick up the existing row
			return tx.Where("user_low_id = ? AND user_high_id = ?", conv.UserLowID, conv.UserHighID).
				First(conv).Error
		}
		members := []models.ConversationUser{
			{ConversationID: conv.ID, UserID: userID1},
			{ConversationID: conv.ID, UserID: userID2},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetConversation(ctx, conv.ID)
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Users").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	var conversations []*models.Conversation
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN conversation_users cu ON conversations.id = cu.conversation_id").
		Where("cu.user_id = ?", userID).
		Preload("Users").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := ConversationSummary{Conversation: conv}
		for i := range conv.Users {
			if conv.Users[i].ID != userID {
				summary.OtherUser = &conv.Users[i]
				break
			}
		}

		var last models.Message
		err := readDB(r.db).WithContext(ctx).
			Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			First(&last).Error
		switch {
		case err == nil:
			summary.LastMessage = &last
		case errors.Is(err, gorm.ErrRecordNotFound):
			// empty conversation
		default:
			return nil, models.NewInternalError(err)
		}

		if err := readDB(r.db).WithContext(ctx).
			Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id != ? AND seen = ?", conv.ID, userID, false).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, models.NewInternalError(err)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *chatRepository) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConversationUser{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// bump the conversation so ListForUser sorts it first
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetMessages returns the conversation history in chronological order,
// annotated with each sender's display name.
func (r *chatRepository) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.Message, error) {
	defer observability.TrackQuery("select", "messages")()
	var messages []*models.Message
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.*, users.name as sender_name").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.conversation_id = ?", convID).
		Order("messages.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched DESC to get the latest page; client expects oldest -> newest
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkSeen flips the seen flag on every unseen message sent by the other
// participant and reports how many rows changed.
func (r *chatRepository) MarkSeen(ctx context.Context, convID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND seen = ?", convID, readerID, false).
		Update("seen", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
