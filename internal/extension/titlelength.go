package extension

import "context"

// TitleLength bounds the title length of uploads.
type TitleLength struct {
	Base
	Min int
	Max int
}

// NewTitleLength applies the conventional 1..1024 bounds.
func NewTitleLength() TitleLength {
	return TitleLength{Min: 1, Max: 1024}
}

func (v TitleLength) PreUpload(_ context.Context, _ Toolkit, _ uint, draft *Draft) (string, error) {
	if len(draft.Title) < v.Min {
		return "title too short", nil
	}
	if len(draft.Title) > v.Max {
		return "title too long", nil
	}
	return "", nil
}
