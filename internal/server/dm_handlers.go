package server

import (
	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateConversation handles POST /api/conversations
//
// Direct conversations are deduplicated: posting the same recipient twice
// returns the existing conversation.
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		RecipientID uint `json:"recipient_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	conv, err := s.chatService.EnsureDirectConversation(ctx, userID, req.RecipientID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(conv)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	convs, err := s.chatService.GetConversations(ctx, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(convs)
}

// GetConversation handles GET /api/conversations/:id
func (s *Server) GetConversation(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	conv, err := s.chatService.GetConversationForUser(ctx, id, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(conv)
}

// SendMessage handles POST /api/conversations/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
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

	conv, err := s.chatService.GetConversationForUser(ctx, id, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	var recipientID uint
	for _, p := range conv.Participants {
		if p.ID != userID {
			recipientID = p.ID
			break
		}
	}

	message, conv, err := s.chatService.SendDirectMessage(ctx, service.SendDirectMessageInput{
		UserID:      userID,
		RecipientID: recipientID,
		Content:     req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishConversationChatEvent(ctx, conv.ID, userID, message)
	s.publishUserEvent(recipientID, EventMessageReceived, map[string]interface{}{
		"conversation_id": conv.ID,
		"message_id":      message.ID,
		"sender_id":       userID,
	})

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	messages, err := s.chatService.GetMessagesForUser(ctx, id, userID, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(messages)
}
