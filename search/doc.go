// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides hybrid retrieval and ranking over stored documents.
//
// The Searcher type implements a multi-stage pipeline that combines:
//   - Semantic search using vector embeddings
//   - Lexical keyword matching fused into the final score
//   - Project-affinity boosting for documents from the caller's project
//   - Optional LLM query expansion and result reranking
//
// Expansion and summarization degrade gracefully: on any failure the
// pipeline continues with the unaugmented input. Reranking failures
// propagate out of the Reranker; the Searcher catches them and falls
// back to the fused ordering.
package search
