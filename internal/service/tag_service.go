package service

import (
	"context"
	"strings"

	"librarium/internal/cache"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/repository"
)

// TagService implements tagging. Tags are owner-or-moderator writes; the
// comma is reserved as the storage delimiter and rejected before any write.
type TagService struct {
	tags     repository.TagRepository
	contents repository.ContentRepository
	users    repository.UserRepository
	engine   *precompute.Engine
	guard    guard
}

// NewTagService creates a tag service.
func NewTagService(tags repository.TagRepository, contents repository.ContentRepository, users repository.UserRepository, engine *precompute.Engine) *TagService {
	return &TagService{
		tags:     tags,
		contents: contents,
		users:    users,
		engine:   engine,
		guard:    guard{contents: contents, users: users},
	}
}

// Add attaches a tag to a content item. Adding a tag that is already present
// is a conflict.
func (s *TagService) Add(ctx context.Context, contentID, userID uint, tag string) error {
	if strings.Contains(tag, ",") {
		return models.NewInvalidArgumentError("Tag must not contain commas")
	}
	if err := requireActor(userID); err != nil {
		return err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}
	if err := s.guard.requireOwnerOrModerator(ctx, contentID, userID); err != nil {
		return err
	}

	present, err := s.tags.Has(ctx, contentID, tag)
	if err != nil {
		return err
	}
	if present {
		return models.NewConflictError("Tag already present")
	}

	if err := s.tags.Add(ctx, contentID, tag); err != nil {
		return err
	}
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}

// Remove detaches a tag. Removing an absent tag is a conflict.
func (s *TagService) Remove(ctx context.Context, contentID, userID uint, tag string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}
	if err := s.guard.requireOwnerOrModerator(ctx, contentID, userID); err != nil {
		return err
	}

	present, err := s.tags.Has(ctx, contentID, tag)
	if err != nil {
		return err
	}
	if !present {
		return models.NewConflictError("Tag not present")
	}

	if err := s.tags.Remove(ctx, contentID, tag); err != nil {
		return err
	}
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}

// List returns a content item's tags in insertion order.
func (s *TagService) List(ctx context.Context, contentID uint) ([]string, error) {
	exists, err := s.contents.Exists(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content")
	}
	return s.tags.ListByContent(ctx, contentID)
}

// ProjectCounts returns a project's tags with usage counts, most used first.
func (s *TagService) ProjectCounts(ctx context.Context, project string, limit, offset int) (map[string]int, error) {
	var counts []models.TagCount
	key := cache.TagCountsKey(project, limit, offset)
	err := cache.Aside(ctx, key, &counts, cache.TagCountsTTL, func() error {
		fetched, err := s.tags.ProjectTagCounts(ctx, project, limit, offset)
		if err != nil {
			return err
		}
		counts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string]int, len(counts))
	for _, c := range counts {
		result[c.Name] = c.Count
	}
	return result, nil
}
