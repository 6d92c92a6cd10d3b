// Package query builds filtered, ordered, paginated listing queries over
// content joined with its precomputed aggregates. Filters are expressed as
// typed clauses that carry both a SQL fragment with bound arguments and an
// in-memory predicate, so the listing semantics are testable without a
// database while the repository translates the same clauses to SQL.
package query

import (
	"encoding/json"
	"strings"

	"librarium/internal/models"
)

// Track selects which relation to content the listing follows.
type Track string

const (
	TrackAll         Track = "all"
	TrackLikes       Track = "likes"
	TrackSubmissions Track = "submissions"
)

// ParseTrack validates a caller-supplied track value.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackAll, TrackLikes, TrackSubmissions:
		return Track(s), nil
	default:
		return "", models.NewInvalidArgumentError("Invalid track")
	}
}

// Order selects the sort key for a listing.
type Order string

const (
	OrderDate            Order = "date"
	OrderLikes           Order = "likes"
	OrderTitle           Order = "title"
	OrderReports         Order = "reports"
	OrderRecommendations Order = "recommendations"
)

// ParseOrder validates a caller-supplied order value.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderDate, OrderLikes, OrderTitle, OrderReports, OrderRecommendations:
		return Order(s), nil
	default:
		return "", models.NewInvalidArgumentError("Invalid order")
	}
}

// Limit bounds for the caller-facing pagination contract.
const (
	DefaultLimit = 10
	MaxLimit     = 500
)

// Options is the request-scoped listing configuration, as resolved by the
// routing layer (actor identity already authenticated).
type Options struct {
	Project string
	Track   Track
	// UserID is the resolved actor, or the explicit user to list for; zero
	// means anonymous.
	UserID uint
	// Authenticated marks that UserID came from a valid token, which enables
	// the personal self-report filter.
	Authenticated  bool
	Whitelist      string
	Blacklist      string
	FilterBanned   bool
	FilterReported bool
	Order          Order
	Descending     bool
	Offset         int
	Limit          int
	IncludeMeta    bool
	ParseMeta      bool
}

// DefaultOptions returns listing options with the documented defaults.
func DefaultOptions(project string) Options {
	return Options{
		Project:        project,
		Track:          TrackAll,
		FilterBanned:   true,
		FilterReported: true,
		Order:          OrderDate,
		Limit:          DefaultLimit,
	}
}

// Normalize clamps pagination to the caller-facing bounds.
func (o *Options) Normalize() {
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// SplitTags converts the stored comma-joined tag set into a slice. The empty
// string means no tags; the delimited form never crosses the API boundary.
func SplitTags(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}

// splitTerms breaks a comma-separated filter list into trimmed, non-empty,
// lowercased terms. Blank terms are ignored, so a whitespace-only filter
// applies no filtering.
func splitTerms(list string) []string {
	var terms []string
	for _, t := range strings.Split(list, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// MetaValue prepares the meta field for a response: verbatim when parsing is
// off, parsed JSON otherwise. Parse failures degrade to an empty object
// rather than erroring.
func MetaValue(meta string, parse bool) any {
	if !parse {
		return meta
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(meta), &parsed); err != nil {
		return map[string]any{}
	}
	return parsed
}
