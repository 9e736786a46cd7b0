// Package cache provides a TTL-bounded in-memory cache for augmentation
// results. Query expansions and document summaries are expensive to compute
// and stable for a given input, so they are memoized here keyed by a hash of
// the input and the generation parameters.
package cache
