package service

import (
	"context"

	"librarium/internal/models"
	"librarium/internal/repository"

	"gorm.io/gorm"
)

// InstanceStats is the operator-facing snapshot of the whole instance.
type InstanceStats struct {
	Users            int64          `json:"users"`
	Content          int64          `json:"content"`
	ContentByProject map[string]int `json:"content_by_project"`
}

// StatsService aggregates instance-wide counters for the admin surface.
type StatsService struct {
	db       *gorm.DB
	contents repository.ContentRepository
}

// NewStatsService creates a stats service.
func NewStatsService(db *gorm.DB, contents repository.ContentRepository) *StatsService {
	return &StatsService{db: db, contents: contents}
}

// Instance returns the current instance-wide counters.
func (s *StatsService) Instance(ctx context.Context) (*InstanceStats, error) {
	var users, content int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Content{}).Count(&content).Error; err != nil {
		return nil, err
	}
	byProject, err := s.contents.CountByProject(ctx)
	if err != nil {
		return nil, err
	}
	return &InstanceStats{
		Users:            users,
		Content:          content,
		ContentByProject: byProject,
	}, nil
}
