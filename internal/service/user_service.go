package service

import (
	"context"
	"errors"
	"log/slog"

	"librarium/internal/auth"
	"librarium/internal/cache"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/repository"

	"gorm.io/gorm"
)

// UserChanges is the moderator-only mutation set for an account.
type UserChanges struct {
	Banned    *bool
	Moderator *bool
	// Purge deletes the target's content and withdraws their likes.
	Purge bool
}

// UserService implements login, token resolution and account management.
type UserService struct {
	users    repository.UserRepository
	contents repository.ContentRepository
	likes    repository.LikeRepository
	engine   *precompute.Engine
	verifier auth.Verifier
	logger   *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(
	users repository.UserRepository,
	contents repository.ContentRepository,
	likes repository.LikeRepository,
	engine *precompute.Engine,
	verifier auth.Verifier,
	logger *slog.Logger,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		contents: contents,
		likes:    likes,
		engine:   engine,
		verifier: verifier,
		logger:   logger,
	}
}

// Login verifies a credential with the identity provider and returns a fresh
// API token. The account is created on first login; only the token's hash is
// stored, and a token colliding with another account displaces it there.
func (s *UserService) Login(ctx context.Context, credential string) (string, error) {
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return "", err
	}

	token := auth.NewSessionToken()
	if err := s.users.UpsertLogin(ctx, identity.ExternalID, identity.Username, auth.HashToken(token)); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("external_id", identity.ExternalID))
	return token, nil
}

// ResolveToken maps a stored token hash back to its account.
func (s *UserService) ResolveToken(ctx context.Context, tokenHash string) (*models.User, error) {
	user, err := s.users.GetByTokenHash(ctx, tokenHash)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("Invalid token")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns the per-project user listing, refreshing the user stats
// cache first (throttled).
func (s *UserService) ListUsers(ctx context.Context, project string, order repository.UserOrder, descending bool, limit, offset int) ([]models.LiteUser, error) {
	if err := s.engine.RefreshUserStats(ctx, project); err != nil {
		return nil, err
	}
	return s.users.ListWithStats(ctx, project, order, descending, limit, offset)
}

// GetUser returns one user's per-project projection.
func (s *UserService) GetUser(ctx context.Context, project string, userID uint) (*models.LiteUser, error) {
	if err := s.engine.RefreshUserStats(ctx, project); err != nil {
		return nil, err
	}
	user, err := s.users.GetWithStats(ctx, project, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetUser applies moderator-only account changes: ban state, moderator
// state, and purge. Purge deletes the target's submissions outright and
// flags everything they liked for the next sweep.
func (s *UserService) SetUser(ctx context.Context, actorID, targetID uint, changes UserChanges) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.Moderator {
		return models.NewForbiddenError("Moderator required")
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User")
	}

	if changes.Banned != nil {
		if err := s.users.SetBanned(ctx, targetID, *changes.Banned); err != nil {
			return err
		}
	}
	if changes.Moderator != nil {
		if err := s.users.SetModerator(ctx, targetID, *changes.Moderator); err != nil {
			return err
		}
	}
	if changes.Purge {
		if err := s.purge(ctx, targetID); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.Uint64("target_id", uint64(targetID)),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.Bool("purge", changes.Purge))
	return nil
}

func (s *UserService) purge(ctx context.Context, userID uint) error {
	deleted, err := s.contents.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	projects := make(map[string]bool)
	for _, c := range deleted {
		cache.InvalidateContent(ctx, c.ID)
		projects[c.Project] = true
	}

	// Withdrawn likes change the aggregates of content that survives the
	// purge, so those cached entries go stale too.
	likedIDs, err := s.likes.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range likedIDs {
		if err := s.engine.MarkDirty(ctx, id); err != nil {
			return err
		}
		cache.InvalidateContent(ctx, id)
		content, err := s.contents.GetByID(ctx, id)
		if err != nil {
			return err
		}
		projects[content.Project] = true
	}
	if _, err := s.engine.SweepDirty(ctx); err != nil {
		return err
	}

	for project := range projects {
		cache.BumpGeneration(ctx, project)
	}
	return nil
}

// ListBanned returns every banned account. Moderator only.
func (s *UserService) ListBanned(ctx context.Context, actorID uint) ([]models.BanEntry, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Moderator {
		return nil, models.NewForbiddenError("Moderator required")
	}
	return s.users.ListBanned(ctx)
}
