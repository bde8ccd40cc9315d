package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/blog-pipeline/internal/blog"
)

func TestOpenMemoryScheme(t *testing.T) {
	store, err := Open(context.Background(), "memory://")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok := store.(*blog.MemStore)
	assert.True(t, ok, "memory:// should select the in-memory store")
}

func TestOpenSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok := store.(*SQLiteStore)
	require.True(t, ok, "a plain path should select the SQLite store")

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist after open")
}

func TestOpenEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}
