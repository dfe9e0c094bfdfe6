package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenLocalStore opens the client-local SQLite file at path and migrates it.
// An empty path opens an in-memory store.
func OpenLocalStore(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local store directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// SQLite has a single writer, and each :memory: connection is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if logger != nil {
		logger.Debug("opened local store", zap.String("path", path))
	}
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
