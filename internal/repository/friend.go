// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"wavelength/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository defines the interface for friend data operations
type FriendRepository interface {
	CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (*models.Friendship, bool, error)
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error
	FilterPending(ctx context.Context, ids []uint) (map[uint]bool, error)
	Delete(ctx context.Context, friendshipID uint) error
}

// friendRepository implements FriendRepository
type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// CreateIfAbsent inserts the friendship unless a row already exists between the
// two users in either direction. It returns the surviving row and whether this
// call created it. Concurrent duplicates, mirrored sends included, collapse
// onto the unique normalized-pair index; the loser of the race re-reads the
// winner's row.
func (r *friendRepository) CreateIfAbsent(ctx context.Context, friendship *models.Friendship) (*models.Friendship, bool, error) {
	existing, err := r.GetFriendshipBetweenUsers(ctx, friendship.RequesterID, friendship.AddresseeID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).
		Create(friendship)
	if res.Error != nil {
		return nil, false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err = r.GetFriendshipBetweenUsers(ctx, friendship.RequesterID, friendship.AddresseeID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, models.NewInternalError(errors.New("friendship insert conflicted but row not found"))
		}
		return existing, false, nil
	}
	return friendship, true, nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).Preload("Requester").Preload("Addressee").First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship

	// Find friendship where users are either requester/addressee in any order
	if err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		Preload("Requester").
		Preload("Addressee").
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No friendship exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User

	// Find all accepted friendships for the user and get the other user in each friendship
	if err := readDB(r.db).WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.addressee_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.addressee_id = ?) AND users.id != ?",
			models.FriendshipStatusAccepted, userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return users, nil
}

func (r *friendRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship

	// Find pending requests where user is the addressee
	if err := readDB(r.db).WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Preload("Requester").
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return friendships, nil
}

func (r *friendRepository) GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship

	// Find pending requests where user is the requester
	if err := readDB(r.db).WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Preload("Requester").
		Preload("Addressee").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return friendships, nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ?", friendshipID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FilterPending returns the subset of the given friendship IDs whose row still
// has pending status.
func (r *friendRepository) FilterPending(ctx context.Context, ids []uint) (map[uint]bool, error) {
	pending := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return pending, nil
	}

	var rows []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id IN ? AND status = ?", ids, models.FriendshipStatusPending).
		Pluck("id", &rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range rows {
		pending[id] = true
	}
	return pending, nil
}

func (r *friendRepository) Delete(ctx context.Context, friendshipID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Friendship{}, friendshipID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
