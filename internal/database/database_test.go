package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.True(t, db.DB.Migrator().HasTable(&entities.CatalogBook{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.ImportSession{}))
}

func TestNewDatabase_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.CatalogBook{ID: "b1", Title: "Kanyasulkam", Tags: []string{"drama"}}).Error)
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	var book entities.CatalogBook
	require.NoError(t, reopened.DB.First(&book, "id = ?", "b1").Error)
	assert.Equal(t, "Kanyasulkam", book.Title)
	assert.Equal(t, []string{"drama"}, book.Tags)
}
