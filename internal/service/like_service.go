package service

import (
	"context"

	"librarium/internal/cache"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/repository"
)

// LikeService implements liking and unliking content.
type LikeService struct {
	likes    repository.LikeRepository
	contents repository.ContentRepository
	engine   *precompute.Engine
}

// NewLikeService creates a like service.
func NewLikeService(likes repository.LikeRepository, contents repository.ContentRepository, engine *precompute.Engine) *LikeService {
	return &LikeService{likes: likes, contents: contents, engine: engine}
}

// Like records a like. Liking twice is a conflict.
func (s *LikeService) Like(ctx context.Context, contentID, userID uint) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}

	liked, err := s.likes.Has(ctx, userID, contentID)
	if err != nil {
		return err
	}
	if liked {
		return models.NewConflictError("Already liked")
	}

	if err := s.likes.Add(ctx, userID, contentID); err != nil {
		return err
	}
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}

// Unlike removes a like. Unliking content that was never liked is a
// conflict.
func (s *LikeService) Unlike(ctx context.Context, contentID, userID uint) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}

	liked, err := s.likes.Has(ctx, userID, contentID)
	if err != nil {
		return err
	}
	if !liked {
		return models.NewConflictError("Not liked previously")
	}

	if err := s.likes.Remove(ctx, userID, contentID); err != nil {
		return err
	}
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}
