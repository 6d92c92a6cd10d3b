package server

import (
	"librarium/internal/models"
	"librarium/internal/query"
	"librarium/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	Title string `json:"title"`
	Meta  string `json:"meta"`
	Data  []byte `json:"data"`
}

// AddContent handles POST /v1/content/:project
func (s *Server) AddContent(c *fiber.Ctx) error {
	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Invalid request body"))
	}

	id, messages, err := s.contentService.Add(c.UserContext(), c.Params("project"), currentUserID(c), service.ContentDraft{
		Title: req.Title,
		Meta:  req.Meta,
		Data:  req.Data,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"contentid": id,
		"messages":  messages,
	})
}

// GetContent handles GET /v1/content/:contentid
func (s *Server) GetContent(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	detail, err := s.contentService.Get(c.UserContext(), id, c.QueryBool("parse_meta", false))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(models.ContentResponse{Content: *detail})
}

// UpdateContent handles PUT /v1/content/:contentid
func (s *Server) UpdateContent(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req contentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Invalid request body"))
	}

	messages, err := s.contentService.Update(c.UserContext(), id, currentUserID(c), service.ContentDraft{
		Title: req.Title,
		Meta:  req.Meta,
		Data:  req.Data,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

// DeleteContent handles DELETE /v1/content/:contentid
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	id, err := parseID(c, "contentid")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.contentService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(models.PlainSuccess{})
}

// ListContent handles GET /v2/content/:project
func (s *Server) ListContent(c *fiber.Ctx) error {
	opts := query.DefaultOptions(c.Params("project"))

	userID := currentUserID(c)
	opts.UserID = userID
	opts.Authenticated = userID != 0

	if track := c.Query("track"); track != "" {
		parsed, err := query.ParseTrack(track)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		opts.Track = parsed
	}
	if order := c.Query("order"); order != "" {
		parsed, err := query.ParseOrder(order)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		opts.Order = parsed
	}
	// Listing another user's track is allowed; their id replaces the actor's
	// for the track filter.
	if explicit := c.QueryInt("user", 0); explicit > 0 {
		opts.UserID = uint(explicit)
	}

	opts.Whitelist = c.Query("whitelist")
	opts.Blacklist = c.Query("blacklist")
	opts.FilterBanned = c.QueryBool("filter_banned", true)
	opts.FilterReported = c.QueryBool("filter_reported", true)
	opts.Descending = c.QueryBool("descending", false)
	opts.IncludeMeta = c.QueryBool("include_meta", false)
	opts.ParseMeta = c.QueryBool("parse_meta", false)
	opts.Limit, opts.Offset = parsePagination(c)

	summaries, err := s.contentService.List(c.UserContext(), opts)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(models.ContentListResponse{Contents: summaries})
}
