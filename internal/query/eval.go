package query

import (
	"sort"
	"time"
)

// Evaluate runs the clause list, ordering and pagination against an
// in-memory row set. It is the reference implementation of the listing
// semantics: the repository's SQL translation must agree with it, and the
// unit tests exercise it without a database.
func Evaluate(rows []*Row, clauses []Clause, opts Options, now time.Time) []*Row {
	var matched []*Row
	for _, r := range rows {
		ok := true
		for _, c := range clauses {
			if !c.Match(r) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, r)
		}
	}

	seed := RecommendationSeed(opts.UserID, now)
	less := lessFunc(opts.Order, seed)
	sort.SliceStable(matched, func(i, j int) bool {
		if opts.Descending {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	if opts.Offset >= len(matched) {
		return nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched
}

func lessFunc(order Order, seed int64) func(a, b *Row) bool {
	switch order {
	case OrderLikes:
		return func(a, b *Row) bool { return a.Likes < b.Likes }
	case OrderTitle:
		return func(a, b *Row) bool { return a.Title < b.Title }
	case OrderReports:
		return func(a, b *Row) bool { return a.Reports < b.Reports }
	case OrderRecommendations:
		return func(a, b *Row) bool {
			return RecommendationScore(seed, a.ContentID, a.Likes) <
				RecommendationScore(seed, b.ContentID, b.Likes)
		}
	default:
		return func(a, b *Row) bool { return a.ContentID < b.ContentID }
	}
}
