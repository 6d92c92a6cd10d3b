package repository

import (
	"context"

	"librarium/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for report data operations.
type ReportRepository interface {
	Has(ctx context.Context, userID, contentID uint, reason string) (bool, error)
	Add(ctx context.Context, userID, contentID uint, reason string) error
	Remove(ctx context.Context, userID, contentID uint, reason string) error
	CountByReason(ctx context.Context, contentID uint, reason string) (int, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Has(ctx context.Context, userID, contentID uint, reason string) (bool, error) {
	return countExists(r.db.WithContext(ctx).Model(&models.Report{}).
		Where("user_id = ? AND content_id = ? AND reason = ?", userID, contentID, reason))
}

func (r *reportRepository) Add(ctx context.Context, userID, contentID uint, reason string) error {
	return r.db.WithContext(ctx).Create(&models.Report{
		UserID:    userID,
		ContentID: contentID,
		Reason:    reason,
	}).Error
}

func (r *reportRepository) Remove(ctx context.Context, userID, contentID uint, reason string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND reason = ?", userID, contentID, reason).
		Delete(&models.Report{}).Error
}

func (r *reportRepository) CountByReason(ctx context.Context, contentID uint, reason string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("content_id = ? AND reason = ?", contentID, reason).
		Count(&count).Error
	return int(count), err
}
