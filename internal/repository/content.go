package repository

import (
	"context"
	"time"

	"librarium/internal/models"
	"librarium/internal/observability"
	"librarium/internal/query"

	"gorm.io/gorm"
)

// ContentDetailRow is the full projection scanned from the listing base
// select plus meta and payload.
type ContentDetailRow struct {
	ContentID uint   `gorm:"column:content_id"`
	UserID    uint   `gorm:"column:user_id"`
	Username  string `gorm:"column:username"`
	Title     string `gorm:"column:title"`
	Version   int    `gorm:"column:version"`
	Meta      string `gorm:"column:meta"`
	Data      []byte `gorm:"column:data"`
	Likes     int    `gorm:"column:likes"`
	Tags      string `gorm:"column:tags"`
}

// ContentRepository defines the interface for content data operations. List
// translates the query package's clauses to SQL; the in-memory evaluator in
// that package is the reference for what the translation must produce.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id uint) (*models.Content, error)
	GetDetail(ctx context.Context, id uint) (*ContentDetailRow, error)
	UpdateDraft(ctx context.Context, id uint, title, meta string, data []byte) error
	Delete(ctx context.Context, id uint) error
	DeleteByUser(ctx context.Context, userID uint) ([]models.Content, error)
	DuplicateExists(ctx context.Context, project string, data []byte) (bool, error)
	OwnedBy(ctx context.Context, contentID, userID uint) (bool, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, opts query.Options, now time.Time) ([]query.Row, error)
	IDsByProject(ctx context.Context, project string) ([]uint, error)
	CountByProject(ctx context.Context) (map[string]int, error)
}

type contentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db, log: observability.NewRepoLogger("content")}
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogWrite(ctx, "create", map[string]interface{}{
		"content_id": content.ID,
		"project":    content.Project,
	})
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (*models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) GetDetail(ctx context.Context, id uint) (*ContentDetailRow, error) {
	var row ContentDetailRow
	err := r.db.WithContext(ctx).
		Table("content c").
		Select("c.id AS content_id, c.user_id, users.username, c.title, c.version, c.meta, c.data, "+
			"stats.likes, stats.tags").
		Joins("INNER JOIN users ON users.id = c.user_id").
		Joins("INNER JOIN content_stats stats ON stats.content_id = c.id").
		Where("c.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateDraft replaces title, meta and payload in place and bumps the
// version counter.
func (r *contentRepository) UpdateDraft(ctx context.Context, id uint, title, meta string, data []byte) error {
	return r.db.WithContext(ctx).Model(&models.Content{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":   title,
			"meta":    meta,
			"data":    data,
			"version": gorm.Expr("version + 1"),
		}).Error
}

// Delete removes a content row and everything hanging off it: likes, tags,
// reports and the stats row.
func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Like{}, &models.Tag{}, &models.Report{}, &models.ContentStats{}} {
			if err := tx.Where("content_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Content{}, id).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	r.log.LogWrite(ctx, "delete", map[string]interface{}{"content_id": id})
	return nil
}

// DeleteByUser removes all content owned by a user, cascading like Delete,
// and returns the removed rows' ids and projects so the caller can evict
// its caches.
func (r *contentRepository) DeleteByUser(ctx context.Context, userID uint) ([]models.Content, error) {
	var rows []models.Content
	err := r.db.WithContext(ctx).Model(&models.Content{}).
		Select("id, project").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := r.Delete(ctx, row.ID); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *contentRepository) DuplicateExists(ctx context.Context, project string, data []byte) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Content{}).
		Where("project = ? AND data = ?", project, data))
}

func (r *contentRepository) OwnedBy(ctx context.Context, contentID, userID uint) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Content{}).
		Where("id = ? AND user_id = ?", contentID, userID))
}

func (r *contentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Content{}).
		Where("id = ?", id))
}

// List builds and runs the filtered, ordered, paginated listing query:
// content joined with owner and precomputed aggregates, one WHERE fragment
// per clause.
func (r *contentRepository) List(ctx context.Context, opts query.Options, now time.Time) ([]query.Row, error) {
	clauses, err := query.Build(opts)
	if err != nil {
		return nil, err
	}

	selectColumns := "c.id AS content_id, c.project, c.user_id, users.username, c.title, c.version, " +
		"stats.likes, stats.tags, stats.reports, stats.counter_reports, users.banned"
	if opts.IncludeMeta {
		selectColumns += ", c.meta"
	}

	tx := r.db.WithContext(ctx).
		Table("content c").
		Select(selectColumns).
		Joins("INNER JOIN users ON users.id = c.user_id").
		Joins("INNER JOIN content_stats stats ON stats.content_id = c.id")

	for _, clause := range clauses {
		sql, args := clause.SQL()
		tx = tx.Where(sql, args...)
	}

	seed := query.RecommendationSeed(opts.UserID, now)
	tx = tx.Order(query.OrderSQL(opts.Order, opts.Descending, seed)).
		Limit(opts.Limit).
		Offset(opts.Offset)

	var rows []query.Row
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentRepository) IDsByProject(ctx context.Context, project string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Content{}).
		Where("project = ?", project).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *contentRepository) CountByProject(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Project string
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&models.Content{}).
		Select("project, COUNT(*) AS count").
		Group("project").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Project] = row.Count
	}
	return counts, nil
}
