package extension

import (
	"context"
	"fmt"
)

// ReportTagger watches reports with a project-defined reason and tags
// content invalid once the report weight outgrows the like buffer, so
// ordinary tag filters hide it without moderator intervention.
type ReportTagger struct {
	Base
	Reason string
	Tag    string
}

// NewReportTagger watches the INVALID reason and applies the invalid tag.
func NewReportTagger() ReportTagger {
	return ReportTagger{Reason: "INVALID", Tag: InvalidTag}
}

func (v ReportTagger) PostReport(ctx context.Context, tk Toolkit, _ uint, contentID uint, reason string) (string, error) {
	if reason != v.Reason {
		return "", nil
	}

	likes, err := tk.Likes(ctx, contentID)
	if err != nil {
		return "", err
	}
	count, err := tk.ReportCount(ctx, contentID, v.Reason)
	if err != nil {
		return "", err
	}

	// Same buffer shape as the visibility score: one report per ten likes,
	// plus one for free.
	if 1.0+float64(likes)/10.0-float64(count) >= 0.0 {
		return "", nil
	}

	tagged, err := tk.HasTag(ctx, contentID, v.Tag)
	if err != nil {
		return "", err
	}
	if tagged {
		return "", nil
	}
	if err := tk.AddTag(ctx, contentID, v.Tag); err != nil {
		return "", err
	}
	return fmt.Sprintf("content %d tagged %s after %d %s reports", contentID, v.Tag, count, v.Reason), nil
}
