// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"wavelength/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OpenConversation handles POST /api/conversations/with/:userId. It returns
// the existing conversation with that user or creates one on first contact.
func (s *Server) OpenConversation(c *fiber.Ctx) error {
	userID := currentUserID(c)
	otherUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	view, err := s.chatService.GetOrCreateConversation(c.UserContext(), userID, otherUserID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(view)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)

	summaries, err := s.chatService.ListConversations(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(summaries)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	messages, err := s.chatService.GetMessages(c.UserContext(), userID, convID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(messages)
}

// SendMessage handles POST /api/conversations/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID := currentUserID(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.UserContext(), userID, convID, req.Content, socketID(c))
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// Typing handles POST /api/conversations/:id/typing. Nothing is persisted;
// the indicator only fans out to the other participant's live connections.
func (s *Server) Typing(c *fiber.Ctx) error {
	userID := currentUserID(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		IsTyping bool `json:"is_typing"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.chatService.Typing(c.UserContext(), userID, convID, req.IsTyping, socketID(c)); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MarkSeen handles POST /api/conversations/:id/seen. It marks the other
// party's messages as seen and reports how many were affected.
func (s *Server) MarkSeen(c *fiber.Ctx) error {
	userID := currentUserID(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.chatService.MarkSeen(c.UserContext(), userID, convID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"marked_seen": count})
}
