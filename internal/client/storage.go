package client

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/anong-ulam/backend/internal/model"
)

// LocalStorage is a string key/value store persisted in the local_storage
// table. Operations are serialized within the process.
type LocalStorage struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewLocalStorage wraps a migrated local store database
func NewLocalStorage(db *gorm.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// GetItem returns the value under key. ok is false when the key is absent.
func (s *LocalStorage) GetItem(key string) (value string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry model.LocalStorageEntry
	err = s.db.Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// SetItem stores value under key, replacing any previous value
func (s *LocalStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.LocalStorageEntry{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (s *LocalStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("key = ?", key).Delete(&model.LocalStorageEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}
