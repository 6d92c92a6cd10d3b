package query

import (
	"fmt"
	"strings"

	"librarium/internal/models"
)

// Row is one candidate listing row: content joined with its owner and
// precomputed aggregates. The SQL path scans directly into it; the in-memory
// evaluator additionally consults the LikedBy/DefaultReporters sets, which
// the database path never populates (those predicates run inside SQL).
type Row struct {
	ContentID      uint   `gorm:"column:content_id"`
	Project        string `gorm:"column:project"`
	UserID         uint   `gorm:"column:user_id"`
	Username       string `gorm:"column:username"`
	Title          string `gorm:"column:title"`
	Version        int    `gorm:"column:version"`
	Meta           string `gorm:"column:meta"`
	Likes          int    `gorm:"column:likes"`
	Tags           string `gorm:"column:tags"`
	Reports        int    `gorm:"column:reports"`
	CounterReports int    `gorm:"column:counter_reports"`
	OwnerBanned    bool   `gorm:"column:banned"`

	LikedBy          map[uint]bool `gorm:"-"`
	DefaultReporters map[uint]bool `gorm:"-"`
}

// Clause is a single typed filter: a SQL fragment with bound arguments for
// the database path, and an equivalent in-memory predicate for tests.
type Clause interface {
	SQL() (string, []any)
	Match(r *Row) bool
}

type projectClause struct{ project string }

func (c projectClause) SQL() (string, []any) { return "c.project = ?", []any{c.project} }
func (c projectClause) Match(r *Row) bool    { return r.Project == c.project }

type ownerClause struct{ userID uint }

func (c ownerClause) SQL() (string, []any) { return "c.user_id = ?", []any{c.userID} }
func (c ownerClause) Match(r *Row) bool    { return r.UserID == c.userID }

type likedByClause struct{ userID uint }

func (c likedByClause) SQL() (string, []any) {
	return "EXISTS (SELECT 1 FROM likes WHERE likes.content_id = c.id AND likes.user_id = ?)",
		[]any{c.userID}
}
func (c likedByClause) Match(r *Row) bool { return r.LikedBy[c.userID] }

// notSelfReportedClause hides content the caller has personally reported
// with the default reason, independent of moderation status.
type notSelfReportedClause struct{ userID uint }

func (c notSelfReportedClause) SQL() (string, []any) {
	return "NOT EXISTS (SELECT 1 FROM reports WHERE reports.content_id = c.id AND reports.reason = ? AND reports.user_id = ?)",
		[]any{"DEFAULT", c.userID}
}
func (c notSelfReportedClause) Match(r *Row) bool { return !r.DefaultReporters[c.userID] }

type notBannedClause struct{}

func (c notBannedClause) SQL() (string, []any) { return "NOT users.banned", nil }
func (c notBannedClause) Match(r *Row) bool    { return !r.OwnerBanned }

// visibleClause keeps content whose visibility score is non-negative.
type visibleClause struct{}

func (c visibleClause) SQL() (string, []any) {
	return "1.0 + stats.likes / 10.0 - stats.reports + stats.counter_reports * 10.0 >= 0.0", nil
}
func (c visibleClause) Match(r *Row) bool {
	return VisibilityScore(r.Likes, r.Reports, r.CounterReports) >= 0
}

// likePattern wraps a term in LIKE wildcards, escaping any metacharacters
// inside it so the SQL path matches terms literally, the way the in-memory
// Match does.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// whitelistTermClause keeps content where the term matches the owner
// username, the title, or the tag set (case-insensitive substring). One
// clause per term; all terms must match.
type whitelistTermClause struct{ term string }

func (c whitelistTermClause) SQL() (string, []any) {
	pattern := likePattern(c.term)
	return `(LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(c.title) LIKE ? ESCAPE '\' OR LOWER(stats.tags) LIKE ? ESCAPE '\')`,
		[]any{pattern, pattern, pattern}
}
func (c whitelistTermClause) Match(r *Row) bool {
	return strings.Contains(strings.ToLower(r.Username), c.term) ||
		strings.Contains(strings.ToLower(r.Title), c.term) ||
		strings.Contains(strings.ToLower(r.Tags), c.term)
}

// blacklistTermClause drops content where the term matches any tag.
type blacklistTermClause struct{ term string }

func (c blacklistTermClause) SQL() (string, []any) {
	return `LOWER(stats.tags) NOT LIKE ? ESCAPE '\'`, []any{likePattern(c.term)}
}
func (c blacklistTermClause) Match(r *Row) bool {
	return !strings.Contains(strings.ToLower(r.Tags), c.term)
}

// Build assembles the filter clauses for the given options. The caller is
// responsible for having validated track and order via ParseTrack/ParseOrder
// when they come from untrusted input; Build re-checks the track since it
// changes the query shape.
func Build(opts Options) ([]Clause, error) {
	clauses := []Clause{projectClause{opts.Project}}

	switch opts.Track {
	case TrackAll, "":
	case TrackLikes:
		if opts.UserID == 0 {
			return nil, models.NewUnauthorizedError("Track requires an authenticated user")
		}
		clauses = append(clauses, likedByClause{opts.UserID})
	case TrackSubmissions:
		if opts.UserID == 0 {
			return nil, models.NewUnauthorizedError("Track requires an authenticated user")
		}
		clauses = append(clauses, ownerClause{opts.UserID})
	default:
		return nil, models.NewInvalidArgumentError("Invalid track")
	}

	if opts.Authenticated && opts.UserID != 0 {
		clauses = append(clauses, notSelfReportedClause{opts.UserID})
	}
	if opts.FilterBanned {
		clauses = append(clauses, notBannedClause{})
	}
	if opts.FilterReported {
		clauses = append(clauses, visibleClause{})
	}
	for _, term := range splitTerms(opts.Whitelist) {
		clauses = append(clauses, whitelistTermClause{term})
	}
	for _, term := range splitTerms(opts.Blacklist) {
		clauses = append(clauses, blacklistTermClause{term})
	}

	return clauses, nil
}

// OrderSQL returns the ORDER BY expression for the chosen order. The
// recommendation order embeds the deterministic seed so the database computes
// the same score as RecommendationScore.
func OrderSQL(order Order, descending bool, seed int64) string {
	var key string
	switch order {
	case OrderLikes:
		key = "stats.likes"
	case OrderTitle:
		key = "c.title"
	case OrderReports:
		key = "stats.reports"
	case OrderRecommendations:
		key = fmt.Sprintf(
			"((((%d + c.id) * 1103515245 + 12345) %% 2147483648) / 2147483648.0) * (stats.likes + 100)",
			seed,
		)
	default: // OrderDate: insertion order
		key = "c.id"
	}
	if descending {
		return key + " DESC"
	}
	return key + " ASC"
}
