// Package reembed provides functionality for reembedding existing documents
// with new or updated embedding models.
//
// This package supports batch processing of documents, progress tracking,
// retry logic with exponential backoff, and vector normalization so stored
// vectors remain comparable by dot product.
package reembed
