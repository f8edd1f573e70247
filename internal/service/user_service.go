package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"wavelength/internal/models"
	"wavelength/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const maxNameLen = 60

// lastSeenTouchInterval throttles presence writes on hot request paths.
const lastSeenTouchInterval = time.Minute

// UserService provides profile and account business logic.
type UserService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository

	lastTouched sync.Map // userID -> time.Time of the last presence write
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	UserID uint
	Name   string
	Email  string
}

// UserSearchResult is a user annotated with their relationship to the caller.
type UserSearchResult struct {
	User         models.UserSummary `json:"user"`
	FriendStatus string             `json:"friend_status"`
	FriendshipID uint               `json:"friendship_id,omitempty"`
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, friendRepo repository.FriendRepository) *UserService {
	return &UserService{userRepo: userRepo, friendRepo: friendRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		if len(in.Name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 60 characters)")
		}
		user.Name = in.Name
	}
	if in.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewValidationError("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// SetProfileImage records the stored blob key on the profile.
func (s *UserService) SetProfileImage(ctx context.Context, userID uint, key string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds users by name or email fragment, each annotated with the
// caller's relationship to them.
func (s *UserService) Search(ctx context.Context, callerID uint, query string, limit int) ([]UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.userRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]UserSearchResult, 0, len(users))
	for _, u := range users {
		if u.ID == callerID {
			continue
		}
		res := UserSearchResult{User: u.Summary(), FriendStatus: "none"}

		friendship, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, callerID, u.ID)
		if err != nil {
			return nil, err
		}
		if friendship != nil {
			switch friendship.Status {
			case models.FriendshipStatusAccepted:
				res.FriendStatus = "friends"
			case models.FriendshipStatusPending:
				res.FriendshipID = friendship.ID
				if friendship.RequesterID == callerID {
					res.FriendStatus = "pending_sent"
				} else {
					res.FriendStatus = "pending_received"
				}
			default:
				res.FriendStatus = string(friendship.Status)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// TouchLastSeen records activity for the user. Best effort, throttled to one
// write per user per interval so authenticated hot paths stay cheap.
func (s *UserService) TouchLastSeen(ctx context.Context, userID uint) {
	now := time.Now()
	if prev, ok := s.lastTouched.Load(userID); ok {
		if now.Sub(prev.(time.Time)) < lastSeenTouchInterval {
			return
		}
	}
	s.lastTouched.Store(userID, now)
	_ = s.userRepo.TouchLastSeen(ctx, userID, now)
}
