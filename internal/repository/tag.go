package repository

import (
	"context"

	"librarium/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations.
type TagRepository interface {
	Has(ctx context.Context, contentID uint, tag string) (bool, error)
	Add(ctx context.Context, contentID uint, tag string) error
	Remove(ctx context.Context, contentID uint, tag string) error
	ListByContent(ctx context.Context, contentID uint) ([]string, error)
	// ProjectTagCounts returns a project's tags ordered by usage, most
	// common first.
	ProjectTagCounts(ctx context.Context, project string, limit, offset int) ([]models.TagCount, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Has(ctx context.Context, contentID uint, tag string) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("content_id = ? AND tag = ?", contentID, tag))
}

func (r *tagRepository) Add(ctx context.Context, contentID uint, tag string) error {
	return r.db.WithContext(ctx).Create(&models.Tag{
		ContentID: contentID,
		Name:      tag,
	}).Error
}

func (r *tagRepository) Remove(ctx context.Context, contentID uint, tag string) error {
	return r.db.WithContext(ctx).
		Where("content_id = ? AND tag = ?", contentID, tag).
		Delete(&models.Tag{}).Error
}

func (r *tagRepository) ListByContent(ctx context.Context, contentID uint) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("content_id = ?", contentID).
		Order("id").
		Pluck("tag", &tags).Error
	return tags, err
}

func (r *tagRepository) ProjectTagCounts(ctx context.Context, project string, limit, offset int) ([]models.TagCount, error) {
	var counts []models.TagCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.tag, COUNT(*) AS count").
		Joins("INNER JOIN content ON content.id = tags.content_id").
		Where("content.project = ?", project).
		Group("tags.tag").
		Order("count DESC").
		Limit(limit).
		Offset(offset).
		Scan(&counts).Error
	return counts, err
}
