package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/cache"
	"github.com/poiesic/recall/core"
)

const summaryPromptTemplate = `Summarize the following document in 2-3 concise sentences (100-200 tokens). Focus on the main topics, key points, and essential information that would help someone determine if this document is relevant to their search.

Document:
%s

Brief Summary:`

const (
	// Summary length bounds. Shorter outputs are rejected, longer ones
	// truncated with an ellipsis marker.
	minSummaryLength = 50
	maxSummaryLength = 1000

	// More line breaks than this and the summary is collapsed to one line.
	maxSummaryLineBreaks = 5
)

// Summary is the outcome of one summarization attempt. A failed attempt
// carries the reason; it is never an error.
type Summary struct {
	Text   string
	Ok     bool
	Reason string // why no summary was produced ("" on success)
}

// Summarizer condenses document content into brief search-time summaries
// using an LLM. Accepted summaries are cached by content hash; all failures
// degrade to "no summary".
type Summarizer struct {
	completer   ai.Completer
	cache       *cache.Cache
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewSummarizer creates a summarizer. The cache is optional; pass nil to
// disable memoization.
func NewSummarizer(completer ai.Completer, memo *cache.Cache, model string, temperature float64, maxTokens int) (*Summarizer, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	return &Summarizer{
		completer:   completer,
		cache:       memo,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      slog.Default().With("component", "summarizer"),
	}, nil
}

// Summarize attempts to produce a brief summary of content. It never returns
// an error: transport failures and rejected outputs produce a Summary with
// Ok=false carrying the reason.
func (s *Summarizer) Summarize(ctx context.Context, content string) Summary {
	if strings.TrimSpace(content) == "" {
		return Summary{Reason: "empty content"}
	}

	// Hash the content so large documents do not blow up the key.
	contentHash := fmt.Sprintf("%d", core.IDFromContent(content))
	key := cache.Key(contentHash, s.model, fmt.Sprintf("%g", s.temperature), fmt.Sprintf("%d", s.maxTokens))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Debug("summary cache hit", "contentLength", len(content))
			return Summary{Text: cached, Ok: true}
		}
	}

	response, err := s.completer.Complete(ctx, fmt.Sprintf(summaryPromptTemplate, content))
	if err != nil {
		s.logger.Warn("summarization failed", "contentLength", len(content), "err", err)
		return Summary{Reason: "completion failed: " + err.Error()}
	}

	summary := strings.TrimSpace(response)
	if summary == "" {
		return Summary{Reason: "empty summary"}
	}
	if len(summary) >= len(content) {
		return Summary{Reason: "summary not shorter than content"}
	}
	if len(summary) < minSummaryLength {
		return Summary{Reason: "summary too short"}
	}
	if len(summary) > maxSummaryLength {
		s.logger.Debug("truncating over-long summary", "summaryLength", len(summary))
		summary = Snippet(summary, maxSummaryLength)
	}
	if strings.Count(summary, "\n") > maxSummaryLineBreaks {
		summary = collapseLines(summary)
	}

	if s.cache != nil {
		s.cache.Set(key, summary)
	}

	s.logger.Debug("summarization completed", "contentLength", len(content), "summaryLength", len(summary))
	return Summary{Text: summary, Ok: true}
}

// collapseLines rewrites multi-line text as a single space-separated line,
// dropping blank lines.
func collapseLines(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
