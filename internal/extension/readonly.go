package extension

import "context"

// ReadOnly rejects uploads from everyone except moderators. It is the sole
// validator of the default fallback project, so unconfigured project names
// are effectively read-only.
type ReadOnly struct {
	Base
}

func (ReadOnly) PreUpload(ctx context.Context, tk Toolkit, userID uint, _ *Draft) (string, error) {
	moderator, err := tk.IsModerator(ctx, userID)
	if err != nil {
		return "", err
	}
	if moderator {
		return "", nil
	}
	return "Project is read only", nil
}
