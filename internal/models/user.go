// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an authenticated account. The external identity is the
// stable identifier handed to us by the identity provider; the token is the
// sha256 hash of the bearer token the client presents and is rotated on
// every login.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"userid"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"-"`
	Token      string    `gorm:"index" json:"-"`
	Username   string    `gorm:"not null" json:"username"`
	Moderator  bool      `gorm:"not null;default:false" json:"moderator"`
	Banned     bool      `gorm:"not null;default:false" json:"banned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
