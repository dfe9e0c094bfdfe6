package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/anong-ulam/backend/internal/model"
)

func TestOpenLocalStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anong-ulam.db")

	db, err := OpenLocalStore(path, zap.NewNop())
	require.NoError(t, err)

	entry := model.LocalStorageEntry{Key: "favoriteRecipes", Value: "[]"}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, Close(db))

	// reopening keeps the data and tolerates an existing schema
	db, err = OpenLocalStore(path, nil)
	require.NoError(t, err)
	defer Close(db)

	var got model.LocalStorageEntry
	require.NoError(t, db.First(&got, "key = ?", "favoriteRecipes").Error)
	assert.Equal(t, "[]", got.Value)
	assert.True(t, db.Migrator().HasTable("local_storage"))
}

func TestOpenLocalStoreInMemory(t *testing.T) {
	db, err := OpenLocalStore("", nil)
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, db.Migrator().HasTable(&model.LocalStorageEntry{}))
}
