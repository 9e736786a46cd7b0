package core

import (
	"encoding/binary"

	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentType categorizes stored documents.
type DocumentType string

const (
	// DocumentTypeConversation is a captured conversation transcript.
	DocumentTypeConversation DocumentType = "conversation"
	// DocumentTypeDocument is general reference material.
	DocumentTypeDocument DocumentType = "document"
	// DocumentTypeDecision records a decision and its context.
	DocumentTypeDecision DocumentType = "decision"
	// DocumentTypeResolution records how an issue was resolved.
	DocumentTypeResolution DocumentType = "resolution"
)

// DefaultNamespace is used when a document or search request carries no namespace.
const DefaultNamespace = "default"

// Document is a stored knowledge record.
// It may be enriched with an embedding vector and a brief summary during processing.
type Document struct {
	Id           ID
	Content      string
	BriefSummary string            // Short search-time summary ("" until the summary processor runs)
	Metadata     map[string]string // Optional metadata (e.g., "title", "tags", "author")
	Namespace    string
	DocumentType DocumentType
	Source       string
	ProjectPath  string    // Project root the document belongs to ("" when unknown)
	Vector       []float32 // Embedding vector for semantic search (populated by processors)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SearchMode labels which scoring path produced a result set.
type SearchMode string

const (
	// SearchModeHybrid fuses vector similarity with lexical relevance.
	SearchModeHybrid SearchMode = "hybrid"
	// SearchModeEmbedding scores by vector similarity alone.
	SearchModeEmbedding SearchMode = "embedding"
)

// SearchRequest describes one retrieval pipeline run.
// It is immutable for the duration of the run.
type SearchRequest struct {
	Query        string
	Namespace    string            // "" searches all namespaces
	DocumentType DocumentType      // "" searches all types
	Metadata     map[string]string // Key/value equality filters
	Limit        int               // <= 0 falls back to the searcher default
	Threshold    *float32          // Minimum embedding similarity in [0, 1]; nil falls back to the searcher default
	ProjectPath  string            // Caller's current project root ("" disables the affinity boost)

	Hybrid         bool // Fuse lexical relevance into the final score
	Expand         bool // Apply LLM query expansion when a model is configured
	Rerank         bool // Apply LLM reranking when a model is configured
	IncludeContent bool // Return full content instead of summaries/snippets
}

// SearchResult is one ranked candidate produced by a search.
type SearchResult struct {
	Document       *Document
	Display        string // Content selected for output: full text, stored summary, or snippet
	EmbeddingScore float32
	KeywordScore   *float32 // Set only when lexical scoring applied and the document matched
	FinalScore     float32
	SameProject    bool
}

// ResultSet is the ordered outcome of one search request.
// Results are in strictly descending FinalScore order, ties broken by
// ascending document ID, and never exceed the requested limit.
type ResultSet struct {
	Results       []*SearchResult
	Query         string
	ExpandedQuery string // "" when no expansion was applied
	Mode          SearchMode
	TotalFound    int
}
