package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

const (
	// maxRerankCandidates bounds the prompt size. Candidates beyond this are
	// appended after the reranked prefix, untouched and in original order.
	maxRerankCandidates = 20

	// rerankSnippetLength is how much of each candidate's content the model sees.
	rerankSnippetLength = 600
)

// Reranker reorders search results by asking an LLM to rank them. Unlike the
// other augmentation stages its failures propagate: the caller decides how
// visible the fallback to the fused ordering should be.
type Reranker struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewReranker creates a result reranker.
func NewReranker(completer ai.Completer) (*Reranker, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	return &Reranker{
		completer: completer,
		logger:    slog.Default().With("component", "reranker"),
	}, nil
}

// Rerank reorders results by model-judged relevance to query and truncates
// to topK. The model ranks at most the first maxRerankCandidates results;
// any it leaves unlisted keep their original relative order after the ranked
// prefix. Transport errors propagate to the caller.
func (r *Reranker) Rerank(ctx context.Context, query string, results []*core.SearchResult, topK int) ([]*core.SearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	prompt := buildRerankPrompt(query, results)
	response, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("rerank completion: %w", err)
	}

	ranking := parseRanking(response, min(len(results), maxRerankCandidates))
	r.logger.Debug("rerank ranking parsed", "response", response, "indices", ranking)

	reordered := applyRanking(results, ranking)
	if topK > 0 && len(reordered) > topK {
		reordered = reordered[:topK]
	}
	return reordered, nil
}

// buildRerankPrompt lists the candidates with title, type, tags, a content
// snippet, and the fused score, then asks for a comma-separated ranking.
func buildRerankPrompt(query string, results []*core.SearchResult) string {
	var b strings.Builder
	b.WriteString("You are a search relevance expert. Rank these documents by relevance to the user's query.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Query: %q\n", query)
	b.WriteString("\n")
	b.WriteString("Ranking Guidelines:\n")
	b.WriteString("1. Prioritize documents that DIRECTLY answer the query over general overviews\n")
	b.WriteString("2. Exact title matches are strong signals of relevance\n")
	b.WriteString("3. Specific documents are better than broad documents covering multiple topics\n")
	b.WriteString("4. Consider document type and tags as relevance signals\n")
	b.WriteString("5. The hybrid search score indicates initial relevance - use it as a reference\n")
	b.WriteString("\n")
	b.WriteString("Documents:\n")

	count := len(results)
	if count > maxRerankCandidates {
		count = maxRerankCandidates
	}
	for i := 0; i < count; i++ {
		doc := results[i].Document
		title := doc.Metadata["title"]
		if title == "" {
			title = "Untitled"
		}
		tags := doc.Metadata["tags"]
		snippet := Snippet(doc.Content, rerankSnippetLength)

		fmt.Fprintf(&b, "\n%d. [Score: %.3f]\n", i+1, results[i].FinalScore)
		fmt.Fprintf(&b, "   Title: %s\n", title)
		fmt.Fprintf(&b, "   Type: %s | Tags: %s\n", doc.DocumentType, tags)
		fmt.Fprintf(&b, "   Content: %s\n", snippet)
	}

	b.WriteString("\nReturn ONLY the ranking as comma-separated numbers (e.g., 3,1,5,2,4).\n")
	b.WriteString("Put the MOST relevant document first:")
	return b.String()
}

// parseRanking extracts 0-based candidate indices from a model response.
// Tokens must be pure digits and in range; anything else is skipped.
// Duplicate indices keep their first position.
func parseRanking(response string, count int) []int {
	flattened := strings.ReplaceAll(response, "\n", " ")
	seen := make(map[int]bool)
	var ranking []int
	for _, token := range strings.Split(flattened, ",") {
		tok := strings.TrimSpace(token)
		if tok == "" || !isDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= count || seen[idx] {
			continue
		}
		seen[idx] = true
		ranking = append(ranking, idx)
	}
	return ranking
}

// applyRanking emits results in ranked order, then appends every result the
// ranking left unlisted in its original relative order. A partial ranking is
// completed rather than rejected.
func applyRanking(results []*core.SearchResult, ranking []int) []*core.SearchResult {
	listed := make(map[int]bool, len(ranking))
	reordered := make([]*core.SearchResult, 0, len(results))
	for _, idx := range ranking {
		listed[idx] = true
		reordered = append(reordered, results[idx])
	}
	for i, result := range results {
		if !listed[i] {
			reordered = append(reordered, result)
		}
	}
	return reordered
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
