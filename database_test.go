package recall

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("create new store", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		store, err := NewStore(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		// Verify components are initialized
		assert.NotNil(t, store.DocumentRepository())
		assert.NotNil(t, store.backend)
		assert.NotNil(t, store.searcher)
		assert.NotNil(t, store.pipeline)
		assert.NotNil(t, store.logger)
	})

	t.Run("in-memory store", func(t *testing.T) {
		store, err := NewStore("", WithInMemory())
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a store at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		store, err := NewStore(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("with cache options", func(t *testing.T) {
		store, err := NewStore("", WithInMemory(),
			WithCacheSize(10), WithCacheTTL(time.Minute))
		require.NoError(t, err)
		defer store.Close()
	})
}

func TestStore_Close(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Close the store
	err = store.Close()
	assert.NoError(t, err)
}

func TestStore_FactoryMethods(t *testing.T) {
	store, err := NewStore("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := store.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := store.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder := store.NewReembedder(nil, os.Stderr)
		require.NotNil(t, reembedder)
	})
}

func TestStore_Get(t *testing.T) {
	store, err := NewStore("", WithInMemory())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	added, err := store.DocumentRepository().AddDocuments(ctx, &core.Document{
		Content:      "stored directly",
		Namespace:    core.DefaultNamespace,
		DocumentType: core.DocumentTypeDocument,
		Source:       "test",
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	doc, err := store.Get(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "stored directly", doc.Content)
}
