package extension

import "context"

// MaxSize rejects uploads whose payload exceeds a byte limit.
type MaxSize struct {
	Base
	Limit int
}

func (v MaxSize) PreUpload(_ context.Context, _ Toolkit, _ uint, draft *Draft) (string, error) {
	if len(draft.Data) > v.Limit {
		return "data too large", nil
	}
	return "", nil
}
