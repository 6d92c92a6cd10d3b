package repository

import (
	"context"

	"librarium/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	Has(ctx context.Context, userID, contentID uint) (bool, error)
	Add(ctx context.Context, userID, contentID uint) error
	Remove(ctx context.Context, userID, contentID uint) error
	CountByContent(ctx context.Context, contentID uint) (int, error)
	// DeleteByUser removes every like a user has given and returns the
	// affected content ids so their stats can be recomputed.
	DeleteByUser(ctx context.Context, userID uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Has(ctx context.Context, userID, contentID uint) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND content_id = ?", userID, contentID))
}

func (r *likeRepository) Add(ctx context.Context, userID, contentID uint) error {
	return r.db.WithContext(ctx).Create(&models.Like{
		UserID:    userID,
		ContentID: contentID,
	}).Error
}

func (r *likeRepository) Remove(ctx context.Context, userID, contentID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&models.Like{}).Error
}

func (r *likeRepository) CountByContent(ctx context.Context, contentID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("content_id = ?", contentID).
		Count(&count).Error
	return int(count), err
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID uint) ([]uint, error) {
	var contentIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("content_id", &contentIDs).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return nil, err
	}
	return contentIDs, nil
}
