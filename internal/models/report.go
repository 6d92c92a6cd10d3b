package models

// Report flags a content item with a free-form, project-defined reason, at
// most one row per (user, content, reason) triple. The DEFAULT and
// COUNTER_DEFAULT reasons feed the visibility score.
type Report struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_reports_triple;index" json:"user_id"`
	ContentID uint   `gorm:"not null;uniqueIndex:idx_reports_triple;index" json:"content_id"`
	Reason    string `gorm:"not null;uniqueIndex:idx_reports_triple" json:"reason"`
}

// TableName specifies the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
