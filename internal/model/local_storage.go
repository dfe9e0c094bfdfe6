package model

import "time"

// LocalStorageEntry is one key/value pair of the client-local store.
type LocalStorageEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LocalStorageEntry) TableName() string {
	return "local_storage"
}
