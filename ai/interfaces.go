package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a single chat completion for a prompt.
// The model, temperature, and token limit are bound at construction time so
// that each pipeline stage carries its own tuning.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends the prompt to the model and returns the raw response
	// text. Returns "" without error if the model produced no choices.
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the Embedder and the per-stage Completer
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryExpander returns the completer used for query expansion,
	// or nil when no expansion model is configured.
	QueryExpander() Completer

	// Reranker returns the completer used for result reranking,
	// or nil when no reranking model is configured.
	Reranker() Completer

	// Summarizer returns the completer used for content summarization,
	// or nil when no summary model is configured.
	Summarizer() Completer

	// Config returns the provider configuration. Stages use it to derive
	// cache keys from model identity and sampling parameters.
	Config() *Config

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
