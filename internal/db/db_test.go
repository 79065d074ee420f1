package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		data, err := fs.ReadFile(migrations, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s has no Up section", e.Name())
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s has no Down section", e.Name())
	}
}

func TestInitialMigrationTables(t *testing.T) {
	data, err := fs.ReadFile(migrations, migrationsDir+"/00001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"jobs", "candidates", "feature_sets"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(data), "CREATE EXTENSION IF NOT EXISTS vector")
}
