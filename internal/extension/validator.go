// Package extension implements the per-project validator pipeline: an
// ordered list of pluggable handlers invoked around content uploads and
// reports. Pre-hooks validate fail-fast and can veto the mutation; post-hooks
// run best-effort after the mutation is committed and may apply side effects
// such as auto-tagging.
package extension

import "context"

// Draft is a content submission before it is persisted. Pre-upload handlers
// may rewrite it in place (e.g. re-encoding an image to strip metadata).
type Draft struct {
	Title string
	Meta  string
	Data  []byte
	Tags  []string
}

// Toolkit is the storage surface handed to handlers. Writes made through it
// keep the precomputation cache fresh: AddTag triggers a recompute for the
// affected content id.
type Toolkit interface {
	ContentData(ctx context.Context, contentID uint) ([]byte, error)
	HasTag(ctx context.Context, contentID uint, tag string) (bool, error)
	AddTag(ctx context.Context, contentID uint, tag string) error
	IsModerator(ctx context.Context, userID uint) (bool, error)
	Likes(ctx context.Context, contentID uint) (int, error)
	ReportCount(ctx context.Context, contentID uint, reason string) (int, error)
}

// Validator is one handler in a project's pipeline. Hooks return a message:
// from a pre-hook, a non-empty message vetoes the operation and is surfaced
// to the caller verbatim; from a post-hook it is collected into the call log.
// An error means the hook itself failed (storage trouble, not a veto).
type Validator interface {
	PreUpload(ctx context.Context, tk Toolkit, userID uint, draft *Draft) (string, error)
	PostUpload(ctx context.Context, tk Toolkit, userID uint, contentID uint) (string, error)
	PreReport(ctx context.Context, tk Toolkit, userID uint, contentID uint, reason string) (string, error)
	PostReport(ctx context.Context, tk Toolkit, userID uint, contentID uint, reason string) (string, error)
}

// Base provides no-op defaults for all hooks; concrete validators embed it
// and override only what they need.
type Base struct{}

func (Base) PreUpload(context.Context, Toolkit, uint, *Draft) (string, error) {
	return "", nil
}

func (Base) PostUpload(context.Context, Toolkit, uint, uint) (string, error) {
	return "", nil
}

func (Base) PreReport(context.Context, Toolkit, uint, uint, string) (string, error) {
	return "", nil
}

func (Base) PostReport(context.Context, Toolkit, uint, uint, string) (string, error) {
	return "", nil
}
