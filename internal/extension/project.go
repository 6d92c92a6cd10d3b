package extension

import (
	"context"
	"log/slog"

	"librarium/internal/models"
)

// Project is a named bundle of ordered validators. Ordering is significant:
// a shape validator configured before a visual-integrity tagger runs first,
// always.
type Project struct {
	Name       string
	Validators []Validator
	logger     *slog.Logger
}

// NewProject creates a project with the given ordered validator list.
func NewProject(name string, validators ...Validator) *Project {
	return &Project{
		Name:       name,
		Validators: validators,
		logger:     slog.Default(),
	}
}

type preHook func(Validator) (string, error)
type postHook func(Validator) (string, error)

// validate runs a pre-hook on every validator in order, fail-fast: the first
// non-empty message aborts and is surfaced as a validation rejection; a hook
// error aborts as an internal error. On success the mutation may proceed.
func (p *Project) validate(hook preHook) error {
	for _, v := range p.Validators {
		m, err := hook(v)
		if err != nil {
			return models.NewInternalError(err)
		}
		if m != "" {
			return models.NewValidationRejectedError(m)
		}
	}
	return nil
}

// call runs a post-hook on every validator in order, unconditionally,
// collecting non-empty messages. Hook errors are logged and skipped: the
// mutation is already committed, so post-hooks are best-effort.
func (p *Project) call(ctx context.Context, event string, hook postHook) []string {
	var log []string
	for _, v := range p.Validators {
		m, err := hook(v)
		if err != nil {
			p.logger.ErrorContext(ctx, "post hook failed",
				slog.String("project", p.Name),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			continue
		}
		if m != "" {
			log = append(log, m)
		}
	}
	return log
}

// ValidatePreUpload vetoes or admits a content draft.
func (p *Project) ValidatePreUpload(ctx context.Context, tk Toolkit, userID uint, draft *Draft) error {
	return p.validate(func(v Validator) (string, error) {
		return v.PreUpload(ctx, tk, userID, draft)
	})
}

// ValidatePreReport vetoes or admits a report.
func (p *Project) ValidatePreReport(ctx context.Context, tk Toolkit, userID uint, contentID uint, reason string) error {
	return p.validate(func(v Validator) (string, error) {
		return v.PreReport(ctx, tk, userID, contentID, reason)
	})
}

// CallPostUpload notifies every validator of a committed upload and returns
// their messages in pipeline order.
func (p *Project) CallPostUpload(ctx context.Context, tk Toolkit, userID uint, contentID uint) []string {
	return p.call(ctx, "post_upload", func(v Validator) (string, error) {
		return v.PostUpload(ctx, tk, userID, contentID)
	})
}

// CallPostReport notifies every validator of a committed report and returns
// their messages in pipeline order.
func (p *Project) CallPostReport(ctx context.Context, tk Toolkit, userID uint, contentID uint, reason string) []string {
	return p.call(ctx, "post_report", func(v Validator) (string, error) {
		return v.PostReport(ctx, tk, userID, contentID, reason)
	})
}

// Registry resolves project names to their configured pipelines. Built once
// at startup from configuration and passed by reference; unconfigured names
// fall back to the default project.
type Registry struct {
	projects map[string]*Project
	fallback *Project
}

// NewRegistry creates a registry with the given fallback project.
func NewRegistry(fallback *Project) *Registry {
	return &Registry{
		projects: make(map[string]*Project),
		fallback: fallback,
	}
}

// Register adds or replaces a named project.
func (r *Registry) Register(p *Project) {
	r.projects[p.Name] = p
}

// Resolve returns the project for a name, or the fallback.
func (r *Registry) Resolve(name string) *Project {
	if p, ok := r.projects[name]; ok {
		return p
	}
	return r.fallback
}

// Names lists the configured project names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	return names
}
