package service

import (
	"context"
	"log/slog"
	"time"

	"wavelength/internal/models"
	"wavelength/internal/realtime"
	"wavelength/internal/repository"
)

const (
	// suggestionWindow is how recently a user must have been seen to be suggested.
	suggestionWindow = 24 * time.Hour
	// suggestionLimit caps the suggestion list.
	suggestionLimit = 20
)

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo      repository.FriendRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	notifier        *realtime.Notifier
}

// NewFriendService returns a new FriendService.
func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	notifier *realtime.Notifier,
) *FriendService {
	return &FriendService{
		friendRepo:      friendRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		notifier:        notifier,
	}
}

// SendFriendRequest creates a pending friendship toward the target user. The
// operation is idempotent: if any friendship already exists between the pair,
// in either direction and any status, that row is returned unchanged and no
// side effects fire.
func (s *FriendService) SendFriendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, addresseeID); err != nil {
		return nil, err
	}

	friendship, created, err := s.friendRepo.CreateIfAbsent(ctx, &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipStatusPending,
	})
	if err != nil {
		return nil, err
	}

	friendship, err = s.friendRepo.GetByID(ctx, friendship.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		return friendship, nil
	}

	if err := s.notificationSvc.Create(ctx, models.NewFriendRequestReceived(addresseeID, friendship, requester)); err != nil {
		slog.Error("friend request notification failed", "friendship_id", friendship.ID, "error", err)
	}
	s.publish(ctx, realtime.FriendRequestSent{Friendship: friendship})

	return friendship, nil
}

// RespondToFriendRequest accepts or rejects a pending request. Only the
// addressee may respond, and only while the request is still pending; the
// transition is one-shot either way.
func (s *FriendService) RespondToFriendRequest(ctx context.Context, responderID, friendshipID uint, accept bool) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	if friendship.AddresseeID != responderID {
		return nil, models.NewForbiddenError("Only the addressee can respond to a friend request")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, models.NewConflictError("Friend request has already been resolved")
	}

	status := models.FriendshipStatusRejected
	if accept {
		status = models.FriendshipStatusAccepted
	}
	if err := s.friendRepo.UpdateStatus(ctx, friendshipID, status); err != nil {
		return nil, err
	}
	friendship, err = s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	// the pending-request entry no longer reflects reality
	if err := s.notificationSvc.RetractFriendRequest(ctx, responderID, friendshipID); err != nil {
		slog.Error("friend request retraction failed", "friendship_id", friendshipID, "error", err)
	}

	if accept {
		responder := &friendship.Addressee
		if err := s.notificationSvc.Create(ctx, models.NewFriendRequestAccepted(friendship.RequesterID, friendship, responder)); err != nil {
			slog.Error("friend accept notification failed", "friendship_id", friendshipID, "error", err)
		}
	}
	s.publish(ctx, realtime.FriendRequestStatusChanged{Friendship: friendship})

	return friendship, nil
}

// GetPendingRequests returns pending friend requests addressed to the user.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetPendingRequests(ctx, userID)
}

// GetSentRequests returns pending friend requests sent by the user.
func (s *FriendService) GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetSentRequests(ctx, userID)
}

// GetFriends returns the list of friends for the user.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.friendRepo.GetFriends(ctx, userID)
}

// GetSuggestions returns recently active users with no existing friendship
// row toward the caller.
func (s *FriendService) GetSuggestions(ctx context.Context, userID uint) ([]models.User, error) {
	activeSince := time.Now().Add(-suggestionWindow)
	return s.userRepo.Suggestions(ctx, userID, activeSince, suggestionLimit)
}

func (s *FriendService) publish(ctx context.Context, ev realtime.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		slog.Error("realtime publish failed", "event", ev.Name(), "channel", ev.Channel().String(), "error", err)
	}
}
