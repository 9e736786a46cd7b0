// Package ingestion provides pipeline orchestration for storing documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Adding documents to storage with project-root detection
//   - Generating embeddings asynchronously
//   - Producing brief summaries asynchronously when a summary model is configured
//
// Processing is performed concurrently using worker pools to maximize throughput.
// Errors during async processing are logged but do not fail the ingestion operation.
package ingestion
