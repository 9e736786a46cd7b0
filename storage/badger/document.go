package badger

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// tf saturation constant for keyword scoring. Keeps per-term contributions in
// [0, 1) so fused scores stay bounded.
const keywordSaturation = 1.2

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindCandidates retrieves admissible candidates for a search query.
// A candidate is admitted when its embedding similarity exceeds the threshold,
// or when lexical terms are present and its content contains all of them.
// Results are unordered except when truncated by query.Limit.
func (r *DocumentRepository) FindCandidates(ctx context.Context, query storage.CandidateQuery) ([]*storage.Candidate, error) {
	var results []*storage.Candidate

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			// Skip index keys (date index and sequence key)
			if strings.HasPrefix(string(key), documentDatePrefix+":") ||
				string(key) == documentIDSeq {
				continue
			}

			var doc *core.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}

			if !matchesFilters(doc, query) {
				continue
			}

			// Documents without embeddings can never be admitted on
			// similarity; they remain reachable via the lexical branch.
			var embeddingScore float32
			if len(doc.Vector) > 0 {
				embeddingScore = dotProduct(query.Vector, doc.Vector)
			}

			var keywordScore *float32
			lexicalHit := false
			if len(query.LexicalTerms) > 0 {
				if score, ok := keywordRelevance(doc.Content, query.LexicalTerms); ok {
					keywordScore = &score
					lexicalHit = true
				}
			}

			if embeddingScore > query.Threshold || lexicalHit {
				results = append(results, &storage.Candidate{
					Document:       doc,
					EmbeddingScore: embeddingScore,
					KeywordScore:   keywordScore,
				})
			}
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	if query.Limit > 0 && len(results) > query.Limit {
		slices.SortFunc(results, func(a, b *storage.Candidate) int {
			if a.EmbeddingScore > b.EmbeddingScore {
				return -1
			}
			if a.EmbeddingScore < b.EmbeddingScore {
				return 1
			}
			return 0
		})
		results = results[:query.Limit]
	}

	return results, nil
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				doc.Id = core.ID(nextID)
			}

			if doc.CreatedAt.IsZero() {
				// The MUS wire format stores microseconds; truncate so the
				// returned document matches stored state.
				doc.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
			}
			doc.UpdatedAt = doc.CreatedAt

			// Store primary record
			key := makeDocumentKey(doc.Id)
			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeDocumentDateKey(doc.CreatedAt, doc.Id)
			if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			// Read old document to detect changes
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			doc.CreatedAt = old.CreatedAt
			doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			// Read document to get metadata for index cleanup
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			// Delete from date index
			dateKey := makeDocumentDateKey(doc.CreatedAt, doc.Id)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentsByDateRange retrieves documents within a time range.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDocumentDateKey(start)
		endKey := makePartialDocumentDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full document
			docKey := makeDocumentKey(docID)
			doc, err := r.readDocument(tx, docKey)
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// readDocument reads a document from the transaction.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// matchesFilters applies namespace, type, and metadata equality filters.
func matchesFilters(doc *core.Document, query storage.CandidateQuery) bool {
	if query.Namespace != "" && doc.Namespace != query.Namespace {
		return false
	}
	if query.DocumentType != "" && doc.DocumentType != query.DocumentType {
		return false
	}
	for k, v := range query.Metadata {
		if doc.Metadata[k] != v {
			return false
		}
	}
	return true
}

// wordTokens splits content into lowercase word tokens. Word characters are
// letters, digits, and underscore; anything else separates tokens.
func wordTokens(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// keywordRelevance scores content against lexical terms. Matching is
// case-insensitive on whole word tokens, so "cat" does not match
// "concatenate". All terms must occur (conjunctive match); the score averages
// a saturating per-term frequency so repeated occurrences help with
// diminishing returns. Returns false when any term is absent.
func keywordRelevance(content string, terms []string) (float32, bool) {
	counts := make(map[string]int)
	for _, token := range wordTokens(content) {
		counts[token]++
	}
	var total float64
	for _, term := range terms {
		tf := counts[strings.ToLower(term)]
		if tf == 0 {
			return 0, false
		}
		total += float64(tf) / (float64(tf) + keywordSaturation)
	}
	return float32(total / float64(len(terms))), true
}

// dotProduct calculates the dot product of two vectors.
// Vectors are normalized at ingest, so this equals cosine similarity.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
