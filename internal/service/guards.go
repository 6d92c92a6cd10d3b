// Package service implements the application's use cases on top of the
// repository layer: content lifecycle, likes, tags, reports, users and the
// access-control guards shared between them.
package service

import (
	"context"

	"librarium/internal/models"
	"librarium/internal/repository"
)

// guard bundles the ownership and role checks used by mutating operations.
type guard struct {
	contents repository.ContentRepository
	users    repository.UserRepository
}

func (g guard) isModerator(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Moderator, nil
}

// requireOwnerOrModerator admits the content owner and moderators, anyone
// else is rejected.
func (g guard) requireOwnerOrModerator(ctx context.Context, contentID, userID uint) error {
	owned, err := g.contents.OwnedBy(ctx, contentID, userID)
	if err != nil {
		return err
	}
	if owned {
		return nil
	}
	mod, err := g.isModerator(ctx, userID)
	if err != nil {
		return err
	}
	if mod {
		return nil
	}
	return models.NewForbiddenError("Not the owner")
}

// requireActor rejects anonymous callers.
func requireActor(userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}
