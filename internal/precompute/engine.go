// Package precompute maintains the denormalized per-content aggregate cache
// (like counts, tag sets, report counters) that listing queries read from.
package precompute

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"librarium/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine-wide report reasons. DEFAULT reports lower a content's visibility
// score; COUNTER_DEFAULT reports raise it (a moderator vouching for
// contested content outweighs ordinary reports 10:1).
const (
	ReasonDefault = "DEFAULT"
	ReasonCounter = "COUNTER_DEFAULT"
)

// userStatsTTL throttles per-project user-stats refreshes.
const userStatsTTL = 30 * time.Minute

var (
	recomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "librarium_recompute_total",
		Help: "Number of per-content stat recomputations.",
	})
	sweepRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "librarium_sweep_rows_total",
		Help: "Number of rows recomputed by dirty sweeps.",
	})
)

// Engine recomputes content aggregates. The consistency policy is
// targeted-immediate: every mutation path calls Recompute for the affected
// content id before the request returns. The dirty flag exists only for bulk
// operations (user purge) and the background sweeper, which also picks up
// content rows that have no stats row at all.
type Engine struct {
	db     *gorm.DB
	logger *slog.Logger

	mu          sync.Mutex
	userRefresh map[string]time.Time
}

// NewEngine creates an engine bound to the given database.
func NewEngine(db *gorm.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:          db,
		logger:      logger,
		userRefresh: make(map[string]time.Time),
	}
}

// Recompute rebuilds the stats row for a single content item from the
// current likes, tags and reports. The write is a full idempotent overwrite:
// a failure before the final upsert leaves the previous row intact, and
// retrying is always safe.
func (e *Engine) Recompute(ctx context.Context, contentID uint) error {
	db := e.db.WithContext(ctx)

	var likes int64
	if err := db.Model(&models.Like{}).
		Where("content_id = ?", contentID).
		Count(&likes).Error; err != nil {
		return err
	}

	var tags []string
	if err := db.Model(&models.Tag{}).
		Where("content_id = ?", contentID).
		Order("id").
		Pluck("tag", &tags).Error; err != nil {
		return err
	}

	var reports, counterReports int64
	if err := db.Model(&models.Report{}).
		Where("content_id = ? AND reason = ?", contentID, ReasonDefault).
		Count(&reports).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Report{}).
		Where("content_id = ? AND reason = ?", contentID, ReasonCounter).
		Count(&counterReports).Error; err != nil {
		return err
	}

	stats := models.ContentStats{
		ContentID:      contentID,
		Dirty:          false,
		Tags:           strings.Join(tags, ","),
		Likes:          int(likes),
		Reports:        int(reports),
		CounterReports: int(counterReports),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		UpdateAll: true,
	}).Create(&stats).Error; err != nil {
		return err
	}

	recomputeTotal.Inc()
	return nil
}

// MarkDirty flags a content item for the next sweep. Content without a stats
// row is already considered dirty, so no placeholder row is written.
func (e *Engine) MarkDirty(ctx context.Context, contentID uint) error {
	return e.db.WithContext(ctx).
		Model(&models.ContentStats{}).
		Where("content_id = ?", contentID).
		Update("dirty", true).Error
}

// SweepDirty recomputes every content item that is flagged dirty or has no
// stats row yet, and returns the number of rows processed. Recompute clears
// the flag as part of its overwrite; an item re-marked dirty mid-sweep is
// picked up by the next tick. Safe to run concurrently with mutations since
// each recompute simply reflects whichever state exists at recompute time.
func (e *Engine) SweepDirty(ctx context.Context) (int, error) {
	var ids []uint
	err := e.db.WithContext(ctx).
		Table("content").
		Select("content.id").
		Joins("LEFT JOIN content_stats ON content_stats.content_id = content.id").
		Where("content_stats.content_id IS NULL OR content_stats.dirty").
		Scan(&ids).Error
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := e.Recompute(ctx, id); err != nil {
			return 0, err
		}
	}

	if len(ids) > 0 {
		sweepRows.Add(float64(len(ids)))
		e.logger.InfoContext(ctx, "dirty sweep completed", slog.Int("rows", len(ids)))
	}
	return len(ids), nil
}

// PruneOrphans drops stats rows whose content has been deleted.
func (e *Engine) PruneOrphans(ctx context.Context) error {
	return e.db.WithContext(ctx).
		Where("content_id NOT IN (?)",
			e.db.Model(&models.Content{}).Select("id"),
		).
		Delete(&models.ContentStats{}).Error
}

// RunSweeper loops SweepDirty until the context is cancelled. Intended as a
// background goroutine; sweep failures are logged and retried next tick.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.SweepDirty(ctx); err != nil {
				e.logger.ErrorContext(ctx, "dirty sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
