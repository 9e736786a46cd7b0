package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
)

// minSummarizableLength is the content size below which summarization is
// skipped; the snippet path already covers short documents at display time.
const minSummarizableLength = 200

// summaryProcessor produces brief search-time summaries for stored documents.
// Summarization degrades per document: a failed or rejected summary leaves
// the document without one rather than failing the batch.
type summaryProcessor struct {
	repository storage.DocumentRepository
	summarizer *search.Summarizer
	logger     *slog.Logger
}

var _ processor = (*summaryProcessor)(nil)

// newSummaryProcessor creates a new summary processor.
func newSummaryProcessor(repository storage.DocumentRepository, summarizer *search.Summarizer, logger *slog.Logger) (processor, error) {
	if repository == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &summaryProcessor{
		repository: repository,
		summarizer: summarizer,
		logger:     logger.With("processor", "summaries"),
	}, nil
}

// process summarizes the specified documents and stores accepted summaries.
func (sp *summaryProcessor) process(ctx context.Context, ids ...core.ID) error {
	sp.logger.Info("processing documents for summaries", "documents", len(ids))

	slices.Sort(ids)

	docs, err := sp.repository.GetDocuments(ctx, ids...)
	if err != nil {
		sp.logger.Error("error retrieving documents", "err", err)
		return err
	}

	var updated []*core.Document
	for _, doc := range docs {
		if doc.BriefSummary != "" || len(doc.Content) < minSummarizableLength {
			continue
		}

		summary := sp.summarizer.Summarize(ctx, doc.Content)
		if !summary.Ok {
			sp.logger.Debug("no summary produced", "id", doc.Id, "reason", summary.Reason)
			continue
		}

		doc.BriefSummary = summary.Text
		updated = append(updated, doc)
	}

	if len(updated) == 0 {
		return nil
	}

	_, err = sp.repository.UpdateDocuments(ctx, updated...)
	return err
}
