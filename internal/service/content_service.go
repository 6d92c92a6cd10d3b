package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"librarium/internal/cache"
	"librarium/internal/extension"
	"librarium/internal/models"
	"librarium/internal/precompute"
	"librarium/internal/query"
	"librarium/internal/repository"

	"gorm.io/gorm"
)

// ContentDraft is an incoming submission or in-place update.
type ContentDraft struct {
	Title string
	Meta  string
	Data  []byte
}

// ContentService implements the content lifecycle: upload with validation,
// in-place update, retrieval, listing and deletion.
type ContentService struct {
	contents repository.ContentRepository
	tags     repository.TagRepository
	users    repository.UserRepository
	registry *extension.Registry
	engine   *precompute.Engine
	toolkit  extension.Toolkit
	guard    guard
	logger   *slog.Logger
}

// NewContentService creates a content service.
func NewContentService(
	contents repository.ContentRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	registry *extension.Registry,
	engine *precompute.Engine,
	toolkit extension.Toolkit,
	logger *slog.Logger,
) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		contents: contents,
		tags:     tags,
		users:    users,
		registry: registry,
		engine:   engine,
		toolkit:  toolkit,
		guard:    guard{contents: contents, users: users},
		logger:   logger,
	}
}

// Add validates and persists a new submission. The returned messages are the
// post-upload hook log. A validator veto leaves no row behind.
func (s *ContentService) Add(ctx context.Context, project string, userID uint, draft ContentDraft) (uint, []string, error) {
	if err := requireActor(userID); err != nil {
		return 0, nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	if user.Banned {
		return 0, nil, models.NewForbiddenError("Account is banned")
	}

	dup, err := s.contents.DuplicateExists(ctx, project, draft.Data)
	if err != nil {
		return 0, nil, err
	}
	if dup {
		return 0, nil, models.NewConflictError("Duplicate content")
	}

	p := s.registry.Resolve(project)
	d := &extension.Draft{Title: draft.Title, Meta: draft.Meta, Data: draft.Data}
	if err := p.ValidatePreUpload(ctx, s.toolkit, userID, d); err != nil {
		return 0, nil, err
	}

	content := &models.Content{
		UserID:  userID,
		Project: project,
		Title:   d.Title,
		Meta:    d.Meta,
		Data:    d.Data,
	}
	if err := s.contents.Create(ctx, content); err != nil {
		return 0, nil, err
	}
	for _, tag := range d.Tags {
		if err := s.tags.Add(ctx, content.ID, tag); err != nil {
			return 0, nil, err
		}
	}

	messages := p.CallPostUpload(ctx, s.toolkit, userID, content.ID)

	if err := s.engine.Recompute(ctx, content.ID); err != nil {
		return 0, nil, err
	}
	cache.BumpGeneration(ctx, project)

	s.logger.InfoContext(ctx, "content added",
		slog.Uint64("content_id", uint64(content.ID)),
		slog.String("project", project))
	return content.ID, messages, nil
}

// Update replaces a submission in place and bumps its version. Only the
// owner or a moderator may update; the draft passes the same validation as
// an upload.
func (s *ContentService) Update(ctx context.Context, contentID, userID uint, draft ContentDraft) ([]string, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, notFoundContent(err)
	}
	if err := s.guard.requireOwnerOrModerator(ctx, contentID, userID); err != nil {
		return nil, err
	}

	p := s.registry.Resolve(content.Project)
	d := &extension.Draft{Title: draft.Title, Meta: draft.Meta, Data: draft.Data}
	if err := p.ValidatePreUpload(ctx, s.toolkit, userID, d); err != nil {
		return nil, err
	}

	if err := s.contents.UpdateDraft(ctx, contentID, d.Title, d.Meta, d.Data); err != nil {
		return nil, err
	}

	messages := p.CallPostUpload(ctx, s.toolkit, userID, contentID)

	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return nil, err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return messages, nil
}

// Get returns the full projection of one content item.
func (s *ContentService) Get(ctx context.Context, contentID uint, parseMeta bool) (*models.ContentDetail, error) {
	var row repository.ContentDetailRow
	err := cache.Aside(ctx, cache.ContentKey(contentID), &row, cache.ContentTTL, func() error {
		r, err := s.contents.GetDetail(ctx, contentID)
		if err != nil {
			return err
		}
		row = *r
		return nil
	})
	if err != nil {
		return nil, notFoundContent(err)
	}

	return &models.ContentDetail{
		ContentID: row.ContentID,
		UserID:    row.UserID,
		Username:  row.Username,
		Likes:     row.Likes,
		Tags:      query.SplitTags(row.Tags),
		Title:     row.Title,
		Version:   row.Version,
		Meta:      query.MetaValue(row.Meta, parseMeta),
		Data:      row.Data,
	}, nil
}

// Delete removes a submission and everything attached to it. Only the owner
// or a moderator may delete.
func (s *ContentService) Delete(ctx context.Context, contentID, userID uint) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return notFoundContent(err)
	}
	if err := s.guard.requireOwnerOrModerator(ctx, contentID, userID); err != nil {
		return err
	}
	if err := s.contents.Delete(ctx, contentID); err != nil {
		return err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return nil
}

// List runs the listing pipeline and maps the rows to lite summaries.
func (s *ContentService) List(ctx context.Context, opts query.Options) ([]models.ContentSummary, error) {
	opts.Normalize()

	generation := cache.ListGeneration(ctx, opts.Project)
	key := cache.ListKey(opts.Project, generation, fmt.Sprintf("%+v", opts))

	var rows []query.Row
	err := cache.Aside(ctx, key, &rows, cache.ListTTL, func() error {
		fetched, err := s.contents.List(ctx, opts, time.Now())
		if err != nil {
			return err
		}
		rows = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ContentSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.ContentSummary{
			ContentID: row.ContentID,
			UserID:    row.UserID,
			Username:  row.Username,
			Likes:     row.Likes,
			Tags:      query.SplitTags(row.Tags),
			Title:     row.Title,
			Version:   row.Version,
		}
		if opts.IncludeMeta {
			summary.Meta = query.MetaValue(row.Meta, opts.ParseMeta)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// PostProcess re-runs the post-upload hooks for one content item, on behalf
// of the admin tools.
func (s *ContentService) PostProcess(ctx context.Context, contentID uint) ([]string, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, notFoundContent(err)
	}
	p := s.registry.Resolve(content.Project)
	messages := p.CallPostUpload(ctx, s.toolkit, content.UserID, contentID)
	if err := s.engine.Recompute(ctx, contentID); err != nil {
		return nil, err
	}
	cache.InvalidateContent(ctx, contentID)
	cache.BumpGeneration(ctx, content.Project)
	return messages, nil
}

// PostProcessProject re-runs the post-upload hooks for every content item in
// a project and returns the combined hook log.
func (s *ContentService) PostProcessProject(ctx context.Context, project string) ([]string, error) {
	ids, err := s.contents.IDsByProject(ctx, project)
	if err != nil {
		return nil, err
	}
	var messages []string
	for _, id := range ids {
		msgs, err := s.PostProcess(ctx, id)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msgs...)
	}
	return messages, nil
}

func notFoundContent(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Content")
	}
	return err
}
