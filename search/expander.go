package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/cache"
)

const expansionPromptTemplate = `Given this search query, expand it with related technical terms that would help find relevant documents.

Original query: "%s"

Rules:
1. Keep the original query intact
2. Add 3-5 related technical terms
3. Focus on synonyms and related concepts
4. Return only the expanded query, no explanation

Examples:
- Input: "database optimization"
  Output: database optimization performance tuning query indexing connection pooling

- Input: "API authentication"
  Output: API authentication OAuth JWT token authorization security

Expanded query:`

// Expansion is the outcome of one query expansion attempt. An unexpanded
// outcome carries the reason; it is never an error, the pipeline always
// continues with the original query.
type Expansion struct {
	Query    string
	Expanded string // "" when no expansion was applied
	Reason   string // why the attempt produced nothing ("" on success)
}

// Applied reports whether the expansion produced usable text.
func (e Expansion) Applied() bool {
	return e.Expanded != ""
}

// Expander rewrites search queries with related terms using an LLM.
// Accepted expansions are cached; all failures degrade to "no expansion".
type Expander struct {
	completer   ai.Completer
	cache       *cache.Cache
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewExpander creates a query expander. The cache is optional; pass nil to
// disable memoization.
func NewExpander(completer ai.Completer, memo *cache.Cache, model string, temperature float64) (*Expander, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	return &Expander{
		completer:   completer,
		cache:       memo,
		model:       model,
		temperature: temperature,
		logger:      slog.Default().With("component", "expander"),
	}, nil
}

// Expand attempts to expand query with related terms. It never returns an
// error: transport failures and rejected expansions produce an unapplied
// Expansion carrying the reason.
func (x *Expander) Expand(ctx context.Context, query string) Expansion {
	result := Expansion{Query: query}

	if strings.TrimSpace(query) == "" {
		result.Reason = "empty query"
		return result
	}

	key := cache.Key(query, x.model, fmt.Sprintf("%g", x.temperature))
	if x.cache != nil {
		if cached, ok := x.cache.Get(key); ok {
			x.logger.Debug("expansion cache hit", "query", query)
			result.Expanded = cached
			return result
		}
	}

	response, err := x.completer.Complete(ctx, fmt.Sprintf(expansionPromptTemplate, query))
	if err != nil {
		x.logger.Warn("query expansion failed", "query", query, "err", err)
		result.Reason = "completion failed: " + err.Error()
		return result
	}

	expanded := strings.TrimSpace(response)
	if strings.HasPrefix(expanded, `"`) && strings.HasSuffix(expanded, `"`) && len(expanded) >= 2 {
		expanded = expanded[1 : len(expanded)-1]
	}

	if reason := validateExpansion(query, expanded); reason != "" {
		x.logger.Warn("rejected query expansion", "query", query, "expanded", expanded, "reason", reason)
		result.Reason = reason
		return result
	}

	if x.cache != nil {
		x.cache.Set(key, expanded)
	}

	x.logger.Debug("query expansion accepted", "query", query, "expanded", expanded)
	result.Expanded = expanded
	return result
}

// validateExpansion applies the acceptance gate for expanded queries.
// Returns "" when the expansion passes, or the rejection reason.
func validateExpansion(original, expanded string) string {
	if expanded == "" {
		return "empty expansion"
	}
	if !strings.Contains(strings.ToLower(expanded), strings.ToLower(original)) {
		return "expansion does not contain original query"
	}
	if len(expanded) < len(original) {
		return "expansion shorter than original"
	}
	if len(expanded) > 5*len(original) {
		return "expansion longer than 5x original"
	}
	if strings.Contains(expanded, "\n") {
		return "expansion contains line breaks"
	}
	if strings.Count(expanded, ".") > 2 {
		return "expansion contains excessive punctuation"
	}
	return ""
}
