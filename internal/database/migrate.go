package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/anong-ulam/backend/internal/model"
)

// RunMigrations brings the local store schema up to date
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.LocalStorageEntry{}); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}
	return nil
}
