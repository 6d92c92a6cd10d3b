package models

// ContentStats is the denormalized per-content aggregate row maintained by
// the precomputation engine. It is a derived cache, never a source of truth:
// every field is overwritten wholesale on recompute. Tags holds the
// comma-joined tag set; the query layer splits it before it crosses the API
// boundary.
type ContentStats struct {
	ContentID      uint   `gorm:"primaryKey" json:"content_id"`
	Dirty          bool   `gorm:"index" json:"-"`
	Tags           string `json:"tags"`
	Likes          int    `gorm:"not null;default:0" json:"likes"`
	Reports        int    `gorm:"not null;default:0" json:"reports"`
	CounterReports int    `gorm:"not null;default:0" json:"counter_reports"`
}

// TableName specifies the table name for GORM.
func (ContentStats) TableName() string {
	return "content_stats"
}

// UserStats is the denormalized per-user, per-project aggregate row used by
// the user listing endpoints.
type UserStats struct {
	UserID          uint   `gorm:"primaryKey" json:"user_id"`
	Project         string `gorm:"primaryKey" json:"project"`
	SubmissionCount int    `gorm:"not null;default:0" json:"submission_count"`
	LikesGiven      int    `gorm:"not null;default:0" json:"likes_given"`
	LikesReceived   int    `gorm:"not null;default:0" json:"likes_received"`
}

// TableName specifies the table name for GORM.
func (UserStats) TableName() string {
	return "user_stats"
}
