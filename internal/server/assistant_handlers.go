package server

import (
	"alphaboard/internal/assistant"
	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AssistantChat handles POST /api/assistant/chat
//
// The assistant is grounded with a snapshot of current platform activity
// (top ideas, promoted content) before the user's conversation is sent to
// the completion provider.
func (s *Server) AssistantChat(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Messages []assistant.Message `json:"messages"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.assistantService.Chat(ctx, service.AssistantChatInput{
		UserID:   userID,
		Messages: req.Messages,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": reply})
}
