package server

import (
	"alphaboard/internal/models"
	"alphaboard/internal/notifications"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateServer handles POST /api/servers
func (s *Server) CreateServer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	srv, err := s.serverService.CreateServer(ctx, service.CreateServerInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(srv)
}

// GetServers handles GET /api/servers
func (s *Server) GetServers(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 50)

	servers, err := s.serverService.ListServers(ctx, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(servers)
}

// GetJoinedServers handles GET /api/servers/joined
func (s *Server) GetJoinedServers(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	servers, err := s.serverService.ListUserServers(ctx, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(servers)
}

// GetServer handles GET /api/servers/:id
func (s *Server) GetServer(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	srv, err := s.serverService.GetServer(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(srv)
}

// JoinServer handles POST /api/servers/:id/join
func (s *Server) JoinServer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.serverService.JoinServer(ctx, id, userID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Joined server"})
}

// LeaveServer handles POST /api/servers/:id/leave
func (s *Server) LeaveServer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.serverService.LeaveServer(ctx, id, userID); err != nil {
		return s.respondError(c, err)
	}

	if s.chatHub != nil {
		s.chatHub.LeaveRoom(userID, notifications.RoomServer, id)
	}

	return c.JSON(fiber.Map{"message": "Left server"})
}

// GetServerMembers handles GET /api/servers/:id/members
func (s *Server) GetServerMembers(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.serverService.ListMembers(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(members)
}

// DeleteServer handles DELETE /api/servers/:id
func (s *Server) DeleteServer(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.serverService.DeleteServer(ctx, id, userID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Server deleted"})
}

// SendServerMessage handles POST /api/servers/:id/messages
func (s *Server) SendServerMessage(c *fiber.Ctx) error {
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

	message, err := s.serverService.SendMessage(ctx, service.SendServerMessageInput{
		UserID:   userID,
		ServerID: id,
		Content:  req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishServerChatEvent(ctx, id, userID, message)

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetServerMessages handles GET /api/servers/:id/messages
func (s *Server) GetServerMessages(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	messages, err := s.serverService.GetMessages(ctx, id, userID, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(messages)
}
