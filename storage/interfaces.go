package storage

import (
	"context"
	"time"

	"github.com/poiesic/recall/core"
)

// CandidateQuery describes one candidate retrieval for the search pipeline.
// All filters are structured fields, never fragments of a query language, so
// caller-supplied values (project paths, metadata) cannot alter query shape.
type CandidateQuery struct {
	// Vector is the query embedding. Required.
	Vector []float32

	// Namespace filters candidates to a single namespace when non-empty.
	Namespace string

	// DocumentType filters candidates to a single type when non-empty.
	DocumentType core.DocumentType

	// Metadata filters candidates by key/value equality. All pairs must match.
	Metadata map[string]string

	// Threshold is the embedding similarity admission floor. A candidate with
	// EmbeddingScore > Threshold is admitted regardless of lexical matching.
	Threshold float32

	// LexicalTerms are sanitized query terms, all of which must appear in a
	// candidate's content for a lexical match. An empty slice disables the
	// lexical branch: candidates are admitted on embedding score alone.
	LexicalTerms []string

	// Limit bounds the number of returned candidates. Zero means no bound;
	// the fusion engine applies its own limit after scoring.
	Limit int
}

// Candidate is one row returned from candidate retrieval. KeywordScore is nil
// when the lexical branch was disabled or the candidate did not match it.
type Candidate struct {
	Document       *core.Document
	EmbeddingScore float32
	KeywordScore   *float32
}

// DocumentRepository provides operations for managing documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// FindCandidates retrieves admissible candidates for a search query.
	// A candidate is admitted when its embedding similarity exceeds the query
	// threshold, or when lexical terms are present and it matches all of them.
	// Results are unordered; the caller fuses and sorts.
	FindCandidates(ctx context.Context, query CandidateQuery) ([]*Candidate, error)

	// AddDocuments adds one or more documents to storage.
	// For documents with Id=0, generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the documents with generated IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents within a time range.
	// Returns documents where start <= CreatedAt < end, ordered by creation time.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
