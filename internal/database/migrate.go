package database

import (
	"librarium/internal/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every persisted model. Tests call this
// directly against an in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Content{},
		&models.Like{},
		&models.Tag{},
		&models.Report{},
		&models.ContentStats{},
		&models.UserStats{},
	)
}
