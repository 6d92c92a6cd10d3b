package models

import "time"

// Content is a user-submitted asset scoped to a project namespace.
// Meta is an opaque string, conventionally JSON; Data is the raw payload.
// Version is incremented on every in-place update.
type Content struct {
	ID        uint      `gorm:"primaryKey" json:"contentid"`
	UserID    uint      `gorm:"not null;index" json:"userid"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Project   string    `gorm:"not null;index" json:"project"`
	Title     string    `gorm:"not null" json:"title"`
	Version   int       `gorm:"not null;default:0" json:"version"`
	Meta      string    `gorm:"type:text" json:"meta"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM.
func (Content) TableName() string {
	return "content"
}

// ContentSummary is the lite listing projection: no payload, aggregates
// pulled from the precomputation cache, tags already split.
type ContentSummary struct {
	ContentID uint     `json:"contentid"`
	UserID    uint     `json:"userid"`
	Username  string   `json:"username"`
	Likes     int      `json:"likes"`
	Tags      []string `json:"tags"`
	Title     string   `json:"title"`
	Version   int      `json:"version"`
	Meta      any      `json:"meta,omitempty"`
}

// ContentDetail is the full projection including meta and payload.
type ContentDetail struct {
	ContentID uint     `json:"contentid"`
	UserID    uint     `json:"userid"`
	Username  string   `json:"username"`
	Likes     int      `json:"likes"`
	Tags      []string `json:"tags"`
	Title     string   `json:"title"`
	Version   int      `json:"version"`
	Meta      any      `json:"meta"`
	Data      []byte   `json:"data"`
}
