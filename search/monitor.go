package search

import (
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// SearchMonitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(request *core.SearchRequest)
	AfterExpansion(expansion Expansion)
	AfterEmbedding(vector []float32)
	AfterCandidateRetrieval(candidates []*storage.Candidate)
	AfterFusion(results []*core.SearchResult)
	RerankApplied(results []*core.SearchResult)
	RerankFallback(err error)
	Finish(set *core.ResultSet)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.SearchRequest)                      {}
func (n *noopMonitor) AfterExpansion(_ Expansion)                       {}
func (n *noopMonitor) AfterEmbedding(_ []float32)                       {}
func (n *noopMonitor) AfterCandidateRetrieval(_ []*storage.Candidate)   {}
func (n *noopMonitor) AfterFusion(_ []*core.SearchResult)               {}
func (n *noopMonitor) RerankApplied(_ []*core.SearchResult)             {}
func (n *noopMonitor) RerankFallback(_ error)                           {}
func (n *noopMonitor) Finish(_ *core.ResultSet)                         {}
