package query

import "time"

// lcg constants, shared by the SQL and in-memory recommendation scorers.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = int64(1) << 31
)

// VisibilityScore computes the moderation visibility score for a content
// item: likes buffer against single reports, counter-reports outweigh
// ordinary reports 10:1. Content with a negative score is hidden from
// filtered listings.
func VisibilityScore(likes, reports, counterReports int) float64 {
	return 1.0 + float64(likes)/10.0 - float64(reports) + float64(counterReports)*10.0
}

// RecommendationSeed derives the daily per-user seed: stable within a
// calendar day for a given user, different across users and across days.
func RecommendationSeed(userID uint, now time.Time) int64 {
	return int64(userID) + now.Unix()/86400
}

// RecommendationScore computes the deterministic pseudo-random ranking score
// for a content id: an LCG hash of (seed + id) normalized to [0,1), scaled
// by (likes + 100) so well-liked content surfaces more often. Reproducible
// bit-for-bit given the same seed and id; not true randomness.
func RecommendationScore(seed int64, contentID uint, likes int) float64 {
	hash := ((seed+int64(contentID))*lcgMultiplier + lcgIncrement) % lcgModulus
	if hash < 0 {
		hash += lcgModulus
	}
	return float64(hash) / float64(lcgModulus) * float64(likes+100)
}
