package service

import (
	"context"

	"librarium/internal/extension"
	"librarium/internal/precompute"
	"librarium/internal/repository"
)

// storageToolkit is the extension.Toolkit handed to validator hooks. Tag
// writes go through the precomputation engine so hook side effects are
// immediately visible in listings.
type storageToolkit struct {
	contents repository.ContentRepository
	tags     repository.TagRepository
	likes    repository.LikeRepository
	reports  repository.ReportRepository
	users    repository.UserRepository
	engine   *precompute.Engine
}

// NewToolkit builds the storage surface exposed to validator hooks.
func NewToolkit(
	contents repository.ContentRepository,
	tags repository.TagRepository,
	likes repository.LikeRepository,
	reports repository.ReportRepository,
	users repository.UserRepository,
	engine *precompute.Engine,
) extension.Toolkit {
	return &storageToolkit{
		contents: contents,
		tags:     tags,
		likes:    likes,
		reports:  reports,
		users:    users,
		engine:   engine,
	}
}

func (t *storageToolkit) ContentData(ctx context.Context, contentID uint) ([]byte, error) {
	content, err := t.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return content.Data, nil
}

func (t *storageToolkit) HasTag(ctx context.Context, contentID uint, tag string) (bool, error) {
	return t.tags.Has(ctx, contentID, tag)
}

func (t *storageToolkit) AddTag(ctx context.Context, contentID uint, tag string) error {
	if err := t.tags.Add(ctx, contentID, tag); err != nil {
		return err
	}
	return t.engine.Recompute(ctx, contentID)
}

func (t *storageToolkit) IsModerator(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	user, err := t.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Moderator, nil
}

func (t *storageToolkit) Likes(ctx context.Context, contentID uint) (int, error) {
	return t.likes.CountByContent(ctx, contentID)
}

func (t *storageToolkit) ReportCount(ctx context.Context, contentID uint, reason string) (int, error) {
	return t.reports.CountByReason(ctx, contentID, reason)
}
