package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	goose.SetBaseFS(migrationFS)
	defer goose.SetBaseFS(nil)

	ms, err := goose.CollectMigrations(migrationDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.EqualValues(t, 1, ms[0].Version)

	names, err := fs.Glob(migrationFS, migrationDir+"/*.sql")
	require.NoError(t, err)
	for _, name := range names {
		body, err := fs.ReadFile(migrationFS, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(string(body)), "-- +goose Up"), name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}
