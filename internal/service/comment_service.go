package service

import (
	"context"
	"log/slog"
	"strings"

	"wavelength/internal/models"
	"wavelength/internal/repository"
)

// CommentService provides comment business logic.
type CommentService struct {
	commentRepo     repository.CommentRepository
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo:     commentRepo,
		postRepo:        postRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
	}
}

// AddComment attaches a comment to the post. Commenting on someone else's
// post notifies the author.
func (s *CommentService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: userID, PostID: postID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment, err = s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	if post.UserID != userID {
		commenter, cerr := s.userRepo.GetByID(ctx, userID)
		if cerr != nil {
			slog.Error("comment notification skipped, commenter lookup failed", "user_id", userID, "error", cerr)
		} else if nerr := s.notificationSvc.Create(ctx, models.NewPostCommented(post.UserID, comment, commenter)); nerr != nil {
			slog.Error("comment notification failed", "post_id", postID, "error", nerr)
		}
	}

	return comment, nil
}

// UpdateComment edits a comment. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > models.MaxCommentContentLength {
		return models.NewValidationError("Content too long (max 1000 characters)")
	}
	return nil
}
