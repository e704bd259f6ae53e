package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?page=&limit=&sort=
//
// The response interleaves ideas with approved ads and promoted affiliate
// links; anonymous callers get the same composition without per-user like
// state.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	pageNum := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	sort := c.Query("sort", "hot")
	userID, _ := s.optionalUserID(c)

	feedPage, err := s.feedService.GetFeed(ctx, pageNum, limit, userID, sort)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(feedPage)
}
