package server

import (
	"time"

	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ideaRequest struct {
	Title      string                   `json:"title"`
	Instrument string                   `json:"instrument"`
	Tags       []string                 `json:"tags"`
	ImageURL   string                   `json:"image_url,omitempty"`
	Pages      []string                 `json:"pages"`
	Media      []service.MediaItemInput `json:"media"`
}

// CreateIdea handles POST /api/ideas
func (s *Server) CreateIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req ideaRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	idea, err := s.ideaService.CreateIdea(ctx, service.CreateIdeaInput{
		UserID:     userID,
		Title:      req.Title,
		Instrument: req.Instrument,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		Pages:      req.Pages,
		Media:      req.Media,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishBroadcastEvent(EventIdeaCreated, map[string]interface{}{
		"idea_id":    idea.ID,
		"author_id":  idea.UserID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(idea)
}

// GetIdeas handles GET /api/ideas
func (s *Server) GetIdeas(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)
	userID, _ := s.optionalUserID(c)
	sort := c.Query("sort", "new")

	ideas, err := s.ideaService.ListIdeas(ctx, page.Limit, page.Offset, userID, sort)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ideas)
}

// GetIdea handles GET /api/ideas/:id
func (s *Server) GetIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	idea, err := s.ideaService.GetIdea(ctx, id, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(idea)
}

// GetIdeaPage handles GET /api/ideas/:id/page/:page
func (s *Server) GetIdeaPage(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pageNum, perr := c.ParamsInt("page")
	if perr != nil || pageNum < 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid page number"))
	}
	userID, _ := s.optionalUserID(c)

	page, err := s.ideaService.GetIdeaPage(ctx, id, pageNum, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(page)
}

// SearchIdeas handles GET /api/ideas/search?q=...
func (s *Server) SearchIdeas(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	page := parsePagination(c, 10)
	userID, _ := s.optionalUserID(c)

	ideas, err := s.ideaService.SearchIdeas(ctx, q, page.Limit, page.Offset, userID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ideas)
}

// GetUserIdeas handles GET /api/users/:id/ideas
func (s *Server) GetUserIdeas(c *fiber.Ctx) error {
	ctx := c.Context()
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	currentUserID, _ := s.optionalUserID(c)

	ideas, err := s.ideaService.GetUserIdeas(ctx, authorID, page.Limit, page.Offset, currentUserID)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ideas)
}

// UpdateIdea handles PUT /api/ideas/:id
func (s *Server) UpdateIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req ideaRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	idea, err := s.ideaService.UpdateIdea(ctx, service.UpdateIdeaInput{
		UserID:     userID,
		IdeaID:     id,
		Title:      req.Title,
		Instrument: req.Instrument,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		Pages:      req.Pages,
		Media:      req.Media,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(idea)
}

// DeleteIdea handles DELETE /api/ideas/:id
func (s *Server) DeleteIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.ideaService.DeleteIdea(ctx, service.DeleteIdeaInput{
		UserID: userID,
		IdeaID: id,
	}); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Idea deleted"})
}

// PinIdea handles POST /api/ideas/:id/pin
func (s *Server) PinIdea(c *fiber.Ctx) error {
	return s.setPinned(c, true)
}

// UnpinIdea handles DELETE /api/ideas/:id/pin
func (s *Server) UnpinIdea(c *fiber.Ctx) error {
	return s.setPinned(c, false)
}

func (s *Server) setPinned(c *fiber.Ctx, pinned bool) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	idea, err := s.ideaService.SetPinned(ctx, userID, id, pinned)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(idea)
}

// LikeIdea handles POST /api/ideas/:id/like
func (s *Server) LikeIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.Like(ctx, userID, id)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishUserEvent(userID, EventLikeUpdated, map[string]interface{}{
		"idea_id": result.IdeaID,
		"liked":   result.Liked,
		"count":   result.Count,
	})

	return c.JSON(result)
}

// UnlikeIdea handles DELETE /api/ideas/:id/like
func (s *Server) UnlikeIdea(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.Unlike(ctx, userID, id)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishUserEvent(userID, EventLikeUpdated, map[string]interface{}{
		"idea_id": result.IdeaID,
		"liked":   result.Liked,
		"count":   result.Count,
	})

	return c.JSON(result)
}
