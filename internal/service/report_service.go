package service

import (
	"context"

	"librarium/internal/cache"
	"librarium/internal/extension"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/repository"
)

// ReportService implements reporting content. Reports feed the visibility
// score through the precomputation engine; projects can veto or react to
// reports through their validator pipeline.
type ReportService struct {
	reports  repository.ReportRepository
	contents repository.ContentRepository
	registry *extension.Registry
	engine   *precompute.Engine
	toolkit  extension.Toolkit
}

// NewReportService creates a report service.
func NewReportService(
	reports repository.ReportRepository,
	contents repository.ContentRepository,
	registry *extension.Registry,
	engine *precompute.Engine,
	toolkit extension.Toolkit,
) *ReportService {
	return &ReportService{
		reports:  reports,
		contents: contents,
		registry: registry,
		engine:   engine,
		toolkit:  toolkit,
	}
}

// Report records a report with the given reason (DEFAULT when empty).
// Reporting the same content twice for the same reason is a conflict. The
// returned messages are the post-report hook log.
func (s *ReportService) Report(ctx context.Context, contentID, userID uint, reason string) ([]string, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = precompute.ReasonDefault
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, notFoundContent(err)
	}

	p := s.registry.Resolve(content.Project)
	if err := p.ValidatePreReport(ctx, s.toolkit, userID, contentID, reason); err != nil {
		return nil, err
	}

	reported, err := s.reports.Has(ctx, userID, contentID, reason)
	if err != nil {
		return nil, err
	}
	if reported {
		return nil, models.NewConflictError("Already reported")
	}

	if err := s.reports.Add(ctx, userID, contentID, reason); err != nil {
		return nil, err
	}

	messages := p.CallPostReport(ctx, s.toolkit, userID, contentID, reason)

	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return nil, err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return messages, nil
}

// Unreport withdraws a report. Withdrawing a report that was never filed is
// a conflict.
func (s *ReportService) Unreport(ctx context.Context, contentID, userID uint, reason string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if reason == "" {
		reason = precompute.ReasonDefault
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}

	reported, err := s.reports.Has(ctx, userID, contentID, reason)
	if err != nil {
		return err
	}
	if !reported {
		return models.NewConflictError("Not reported previously")
	}

	if err := s.reports.Remove(ctx, userID, contentID, reason); err != nil {
		return err
	}
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}
