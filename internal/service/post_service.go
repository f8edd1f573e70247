package service

import (
	"context"
	"log/slog"
	"strings"

	"wavelength/internal/models"
	"wavelength/internal/repository"
)

// PostService provides feed and post business logic.
type PostService struct {
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
) *PostService {
	return &PostService{
		postRepo:        postRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
	}
}

// GetFeed returns posts by the viewer and their accepted friends, newest first.
func (s *PostService) GetFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListFeed(ctx, viewerID, limit, offset)
}

// GetPost returns a single post with comments and like state for the viewer.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

// CreatePost publishes a new post by the user.
func (s *PostService) CreatePost(ctx context.Context, userID uint, content string) (*models.Post, error) {
	if err := validatePostContent(content); err != nil {
		return nil, err
	}
	post := &models.Post{UserID: userID, Content: content}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// UpdatePost edits a post's content. Only the author may edit.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint, content string) (*models.Post, error) {
	if err := validatePostContent(content); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// DeletePost removes a post. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the caller's like on the post. A fresh like on someone
// else's post notifies the author; un-liking and self-liking never do.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (liked bool, likesCount int64, err error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}

	existing, err := s.postRepo.GetLike(ctx, userID, postID)
	if err != nil {
		return false, 0, err
	}

	if existing != nil {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, 0, err
		}
		count, err := s.postRepo.CountLikes(ctx, postID)
		return false, count, err
	}

	like, created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return false, 0, err
	}

	if created && post.UserID != userID {
		liker, lerr := s.userRepo.GetByID(ctx, userID)
		if lerr != nil {
			slog.Error("like notification skipped, liker lookup failed", "user_id", userID, "error", lerr)
		} else if nerr := s.notificationSvc.Create(ctx, models.NewPostLiked(post.UserID, like, liker)); nerr != nil {
			slog.Error("like notification failed", "post_id", postID, "error", nerr)
		}
	}

	count, err := s.postRepo.CountLikes(ctx, postID)
	return true, count, err
}

func validatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > models.MaxPostContentLength {
		return models.NewValidationError("Content too long (max 5000 characters)")
	}
	return nil
}
