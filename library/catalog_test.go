package library

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleCatalog = `
books:
  - title: Dune
    author: Frank Herbert
  - title: Solaris
    author: Stanisław Lem
    available: false
`

func TestLoadCatalog(t *testing.T) {
	entries, err := LoadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Dune", entries[0].Title)
	assert.Nil(t, entries[0].Available)
	require.NotNil(t, entries[1].Available)
	assert.False(t, *entries[1].Available)
}

func TestLoadCatalog_Empty(t *testing.T) {
	entries, err := LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadCatalog_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "books:\n  - title: Dune\n    author: Herbert\n    isbn: 123\n",
		"missing title": "books:\n  - author: Herbert\n",
		"blank author":  "books:\n  - title: Dune\n    author: '  '\n",
		"not yaml":      "books: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestImportCatalog(t *testing.T) {
	store := newMemStore()
	mgr := NewLibraryManager(store, nil)

	entries, err := LoadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	res, err := mgr.ImportCatalog(context.Background(), entries)
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	require.Len(t, res.Added, 2)
	assert.True(t, res.Added[0].Available)
	assert.False(t, res.Added[1].Available)

	books, _ := store.List(context.Background())
	assert.Equal(t, res.Added, books)
}

func TestImportCatalog_RecordsFailures(t *testing.T) {
	calls := 0
	store := &mockBookStore{
		CreateFunc: func(_ context.Context, title, _ string) (int64, error) {
			calls++
			if title == "Broken" {
				return 0, &StorageError{Op: "add book", Err: errors.New("disk full")}
			}
			return int64(calls), nil
		},
	}
	mgr := NewLibraryManager(store, nil)

	res, err := mgr.ImportCatalog(context.Background(), []CatalogEntry{
		{Title: "Dune", Author: "Herbert"},
		{Title: "Broken", Author: "Nobody"},
		{Title: "", Author: "Blank"},
		{Title: "Emma", Author: "Austen"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Added, 2)
	require.Len(t, res.Failed, 2)
	assert.True(t, IsStorageError(res.Failed[0].Err))
	assert.ErrorIs(t, res.Failed[1].Err, ErrEmptyTitle)
}

func TestImportCatalog_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewLibraryManager(newMemStore(), nil).ImportCatalog(ctx, []CatalogEntry{{Title: "Dune", Author: "Herbert"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Added)
}

func TestImportCatalog_RemovesRowWhenStatusFails(t *testing.T) {
	mem := newMemStore()
	store := &mockBookStore{
		CreateFunc: mem.Create,
		ListFunc:   mem.List,
		UpdateStatusFunc: func(context.Context, int64, bool) error {
			return &StorageError{Op: "update book status", Err: errors.New("connection reset")}
		},
		DeleteFunc: mem.Delete,
	}
	borrowed := false
	res, err := NewLibraryManager(store, nil).ImportCatalog(context.Background(), []CatalogEntry{
		{Title: "Dune", Author: "Herbert", Available: &borrowed},
		{Title: "Emma", Author: "Austen"},
	})
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Dune", res.Failed[0].Entry.Title)
	assert.True(t, IsStorageError(res.Failed[0].Err))
	require.Len(t, res.Added, 1)
	assert.Equal(t, "Emma", res.Added[0].Title)

	books, _ := mem.List(context.Background())
	assert.Equal(t, res.Added, books)
}

func TestImportCatalog_ReportsFailedRollback(t *testing.T) {
	statusErr := errors.New("connection reset")
	deleteErr := errors.New("connection refused")
	store := &mockBookStore{
		CreateFunc:       func(context.Context, string, string) (int64, error) { return 1, nil },
		UpdateStatusFunc: func(context.Context, int64, bool) error { return statusErr },
		DeleteFunc:       func(context.Context, int64) error { return deleteErr },
	}
	borrowed := false
	res, err := NewLibraryManager(store, nil).ImportCatalog(context.Background(), []CatalogEntry{
		{Title: "Dune", Author: "Herbert", Available: &borrowed},
	})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Err, statusErr)
	assert.ErrorIs(t, res.Failed[0].Err, deleteErr)
	assert.Empty(t, res.Added)
}

func TestImportCatalog_LogsSummaryOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	mgr := NewLibraryManager(newMemStore(), zap.New(core))

	_, err := mgr.ImportCatalog(context.Background(), []CatalogEntry{{Title: "Dune", Author: "Herbert"}})
	require.NoError(t, err)

	summary := logs.FilterMessage("catalog imported")
	require.Equal(t, 1, summary.Len())
	assert.EqualValues(t, 1, summary.All()[0].ContextMap()["added"])
}
