// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"wavelength/internal/models"
	"wavelength/internal/observability"
	"wavelength/internal/realtime"
	"wavelength/internal/repository"
)

const (
	// notificationWindow is how far back the notification list reaches.
	notificationWindow = 5 * time.Minute
	// notificationLimit caps the notification list.
	notificationLimit = 50
)

// NotificationService owns the durable notification ledger. Every write also
// pushes a live notification.created event to the recipient.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	friendRepo       repository.FriendRepository
	notifier         *realtime.Notifier
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	friendRepo repository.FriendRepository,
	notifier *realtime.Notifier,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		friendRepo:       friendRepo,
		notifier:         notifier,
	}
}

// Create persists the ledger entry and emits notification.created to the
// recipient's channel. Fan-out failure is logged and swallowed: the ledger
// write already succeeded and the client reconciles on its next pull.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return err
	}
	observability.NotificationsCreatedTotal.WithLabelValues(string(n.Kind)).Inc()
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, realtime.NotificationCreated{Notification: n}); err != nil {
			slog.Error("notification fan-out failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
	return nil
}

// List returns the user's recent notifications, newest first. Entries for
// friend requests that are no longer pending are filtered out at read time,
// so a stale entry heals itself without a cleanup job.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	since := time.Now().Add(-notificationWindow)
	notifications, err := s.notificationRepo.ListRecent(ctx, userID, since, notificationLimit)
	if err != nil {
		return nil, err
	}

	var friendshipIDs []uint
	for _, n := range notifications {
		if n.Kind == models.NotificationFriendRequestReceived && n.Data.FriendshipID != 0 {
			friendshipIDs = append(friendshipIDs, n.Data.FriendshipID)
		}
	}
	if len(friendshipIDs) == 0 {
		return notifications, nil
	}

	pending, err := s.friendRepo.FilterPending(ctx, friendshipIDs)
	if err != nil {
		return nil, err
	}

	filtered := notifications[:0]
	for _, n := range notifications {
		if n.Kind == models.NotificationFriendRequestReceived && !pending[n.Data.FriendshipID] {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, id string) error {
	return s.notificationRepo.MarkRead(ctx, userID, id, time.Now())
}

// RetractFriendRequest removes the friend_request_received entry that a
// resolved request created for the responder.
func (s *NotificationService) RetractFriendRequest(ctx context.Context, userID, friendshipID uint) error {
	return s.notificationRepo.DeleteByFriendship(ctx, userID, friendshipID, models.NotificationFriendRequestReceived)
}
