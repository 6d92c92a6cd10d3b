package models

// Tag attaches a label to a content item. Uniqueness per (content, tag) is
// enforced at the application level; tags containing the comma separator are
// rejected before they reach storage.
type Tag struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContentID uint   `gorm:"not null;uniqueIndex:idx_tags_content_tag;index" json:"content_id"`
	Name      string `gorm:"column:tag;not null;uniqueIndex:idx_tags_content_tag" json:"tag"`
}

// TableName specifies the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// TagCount is a tag with its usage count within a project.
type TagCount struct {
	Name  string `gorm:"column:tag" json:"tag"`
	Count int    `json:"count"`
}
