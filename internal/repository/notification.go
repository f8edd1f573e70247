package repository

import (
	"context"
	"time"

	"wavelength/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the notification ledger.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, id string, readAt time.Time) error
	DeleteByFriendship(ctx context.Context, userID, friendshipID uint, kind models.NotificationKind) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListRecent(ctx context.Context, userID uint, since time.Time, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := readDB(r.db).WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// MarkRead is scoped to the owner; marking someone else's notification
// reads as if it does not exist.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, id string, readAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", readAt)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

// DeleteByFriendship retracts ledger entries of the given kind that reference
// the friendship. Used when a pending request is resolved.
func (r *notificationRepository) DeleteByFriendship(ctx context.Context, userID, friendshipID uint, kind models.NotificationKind) error {
	var candidates []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Find(&candidates).Error; err != nil {
		return models.NewInternalError(err)
	}

	ids := make([]string, 0, 1)
	for _, n := range candidates {
		if n.Data.FriendshipID == friendshipID {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
