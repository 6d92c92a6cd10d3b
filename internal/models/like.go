package models

// Like is an idempotent set membership between a user and a content item,
// at most one row per pair.
type Like struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_likes_user_content;index" json:"user_id"`
	ContentID uint `gorm:"not null;uniqueIndex:idx_likes_user_content;index" json:"content_id"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}
