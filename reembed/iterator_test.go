package reembed

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (storage.DocumentRepository, func()) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		backend.Close()
	}

	return repo, cleanup
}

func testDoc(content string) *core.Document {
	return &core.Document{
		Content:      content,
		Namespace:    core.DefaultNamespace,
		DocumentType: core.DocumentTypeDocument,
		Source:       "test",
		CreatedAt:    time.Now(),
	}
}

func TestDocumentIterator_Basic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Add test documents
	docs := []*core.Document{
		testDoc("doc 1"),
		testDoc("doc 2"),
		testDoc("doc 3"),
	}
	added, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 3)

	// Iterate all documents
	iter := NewDocumentIterator(repo, 2) // Batch size of 2

	count := 0
	seen := make(map[core.ID]bool)
	err = iter.ForEach(ctx, func(docs []*core.Document) error {
		count += len(docs)
		for _, d := range docs {
			seen[d.Id] = true
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, count, "should iterate all 3 documents")
	assert.Len(t, seen, 3, "should see each document once")
}

func TestDocumentIterator_BatchSizes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Add 10 documents
	docs := make([]*core.Document, 10)
	for i := 0; i < 10; i++ {
		docs[i] = testDoc("batch test")
	}
	_, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)

	tests := []struct {
		name            string
		batchSize       int
		expectedBatches int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4},
		{"batch size 5", 5, 2},
		{"batch size 10", 10, 1},
		{"batch size 20", 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewDocumentIterator(repo, tt.batchSize)
			batches := 0
			totalDocs := 0

			err := iter.ForEach(ctx, func(docs []*core.Document) error {
				batches++
				totalDocs += len(docs)
				assert.LessOrEqual(t, len(docs), tt.batchSize, "batch should not exceed batchSize")
				return nil
			})
			require.NoError(t, err)

			assert.Equal(t, tt.expectedBatches, batches, "batch count")
			assert.Equal(t, 10, totalDocs, "total documents")
		})
	}
}

func TestDocumentIterator_EmptyDatabase(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	iter := NewDocumentIterator(repo, 10)

	called := false
	err := iter.ForEach(ctx, func(docs []*core.Document) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	assert.False(t, called, "callback should not be called for empty database")
}

func TestDocumentIterator_ErrorHandling(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Add documents
	docs := []*core.Document{
		testDoc("doc 1"),
		testDoc("doc 2"),
	}
	_, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)

	iter := NewDocumentIterator(repo, 1)

	expectedErr := assert.AnError
	calls := 0
	err = iter.ForEach(ctx, func(docs []*core.Document) error {
		calls++
		if calls == 1 {
			return expectedErr
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 1, calls, "iteration should stop on first error")
}

func TestDocumentIterator_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())

	// Add documents
	docs := make([]*core.Document, 5)
	for i := 0; i < 5; i++ {
		docs[i] = testDoc("cancel test")
	}
	_, err := repo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)

	iter := NewDocumentIterator(repo, 1)

	calls := 0
	err = iter.ForEach(ctx, func(docs []*core.Document) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls, "should stop after cancellation")
}

func TestDocumentIterator_InvalidBatchSize(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Zero and negative batch sizes fall back to the default
	iter := NewDocumentIterator(repo, 0)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)

	iter = NewDocumentIterator(repo, -10)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)
}
