package server

import (
	"alphaboard/internal/models"
	"alphaboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SubmitAd handles POST /api/ads
//
// Any authenticated user can submit an ad; it enters the moderation queue
// as pending and only reaches the feed after an admin approves it.
func (s *Server) SubmitAd(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		LinkURL  string `json:"link_url"`
		MediaURL string `json:"media_url,omitempty"`
		Cost     string `json:"cost,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	cost := decimal.Zero
	if req.Cost != "" {
		parsed, err := decimal.NewFromString(req.Cost)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid cost value"))
		}
		cost = parsed
	}

	ad, err := s.adService.SubmitAd(ctx, service.SubmitAdInput{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		LinkURL:  req.LinkURL,
		MediaURL: req.MediaURL,
		Cost:     cost,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ad)
}

// GetPendingAds handles GET /api/admin/ads
func (s *Server) GetPendingAds(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 50)

	ads, err := s.adService.ListPending(ctx, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ads)
}

// ApproveAd handles POST /api/admin/ads/:id/approve
func (s *Server) ApproveAd(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ad, err := s.adService.Approve(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ad)
}

// RejectAd handles POST /api/admin/ads/:id/reject
func (s *Server) RejectAd(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ad, err := s.adService.Reject(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(ad)
}

type affiliateLinkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// GetAffiliateLinks handles GET /api/admin/affiliate-links
func (s *Server) GetAffiliateLinks(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 50)

	links, err := s.adService.ListAffiliateLinks(ctx, page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(links)
}

// CreateAffiliateLink handles POST /api/admin/affiliate-links
func (s *Server) CreateAffiliateLink(c *fiber.Ctx) error {
	return s.upsertAffiliateLink(c, 0)
}

// UpdateAffiliateLink handles PUT /api/admin/affiliate-links/:id
func (s *Server) UpdateAffiliateLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.upsertAffiliateLink(c, id)
}

func (s *Server) upsertAffiliateLink(c *fiber.Ctx, id uint) error {
	ctx := c.Context()

	var req affiliateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.adService.UpsertAffiliateLink(ctx, service.UpsertAffiliateLinkInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	status := fiber.StatusOK
	if id == 0 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(link)
}

// DeleteAffiliateLink handles DELETE /api/admin/affiliate-links/:id
func (s *Server) DeleteAffiliateLink(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adService.DeleteAffiliateLink(ctx, id); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Affiliate link deleted"})
}

// AdminBroadcast handles POST /api/admin/broadcast
//
// Pushes an announcement to every connected websocket client across all
// instances.
func (s *Server) AdminBroadcast(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message is required"))
	}

	s.publishBroadcastEvent(EventAnnouncement, map[string]interface{}{
		"message": req.Message,
	})

	return c.JSON(fiber.Map{"message": "Broadcast sent"})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
