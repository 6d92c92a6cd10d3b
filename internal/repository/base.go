// Package repository provides data access layer implementations for the
// application.
package repository

import "gorm.io/gorm"

// countExists reports whether a prepared count query matches any row.
func countExists(tx *gorm.DB) (bool, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
