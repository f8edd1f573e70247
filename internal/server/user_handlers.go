// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"errors"
	"io"

	"wavelength/internal/models"
	"wavelength/internal/service"
	"wavelength/internal/storage"
	"wavelength/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email != "" {
		if err := validation.ValidateEmail(req.Email); err != nil {
			appErr := models.NewValidationError(err.Error())
			return models.RespondWithError(c, appErr.StatusCode(), appErr)
		}
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// ChangeMyPassword handles PUT /api/users/me/password
func (s *Server) ChangeMyPassword(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
		ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if appErr := validation.Struct(req); appErr != nil {
		return models.RespondWithError(c, appErr.StatusCode(), appErr)
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		appErr := models.NewValidationError(err.Error())
		return models.RespondWithError(c, appErr.StatusCode(), appErr)
	}

	if err := s.userService.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadProfileImage handles POST /api/users/me/image
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	key, err := s.imageStore.SaveProfileImage(userID, content)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyFile):
			appErr := models.NewValidationError("No file uploaded")
			return models.RespondWithError(c, appErr.StatusCode(), appErr)
		case errors.Is(err, storage.ErrFileTooLarge):
			appErr := models.NewValidationError("File too large")
			return models.RespondWithError(c, appErr.StatusCode(), appErr)
		case errors.Is(err, storage.ErrUnsupportedType):
			appErr := models.NewValidationError("Invalid image type")
			return models.RespondWithError(c, appErr.StatusCode(), appErr)
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	user, err := s.userService.SetProfileImage(c.UserContext(), userID, key)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}

// ServeProfileImage handles GET /api/images/:key
func (s *Server) ServeProfileImage(c *fiber.Ctx) error {
	path, err := s.imageStore.Path(c.Params("key"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Image", 0))
	}
	return c.SendFile(path)
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	results, err := s.userService.Search(c.UserContext(), userID, c.Query("q"), page.Limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(results)
}

// GetFriendSuggestions handles GET /api/users/suggestions
func (s *Server) GetFriendSuggestions(c *fiber.Ctx) error {
	userID := currentUserID(c)

	// Suggestions can be rolled out gradually per user.
	if !s.flags.Enabled("friend_suggestions", userID) {
		return c.JSON([]models.User{})
	}

	suggestions, err := s.friendService.GetSuggestions(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(suggestions)
}
