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


package mock

import "github.com/poiesic/recall/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates a mock embedder with optional per-stage mock completers.
type MockProvider struct {
	config     *ai.Config
	embedder   *MockEmbedder
	expander   *MockCompleter
	reranker   *MockCompleter
	summarizer *MockCompleter
}

// NewMockProvider creates a new mock provider with a default mock embedder
// and all augmentation stages disabled (nil completers), mirroring a
// production provider with no augmentation models configured.
//
// Returns ai.AIProvider interface for consistency with production constructors.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		config:   ai.DefaultConfig(),
		embedder: NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Nil completers leave the corresponding stage disabled. This allows full
// control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, expander, reranker, summarizer *MockCompleter) ai.AIProvider {
	config := ai.DefaultConfig()
	if expander != nil {
		config.ExpansionModel = "mock-expander"
	}
	if reranker != nil {
		config.RerankModel = "mock-reranker"
	}
	if summarizer != nil {
		config.SummaryModel = "mock-summarizer"
	}
	return &MockProvider{
		config:     config,
		embedder:   embedder,
		expander:   expander,
		reranker:   reranker,
		summarizer: summarizer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// QueryExpander returns the mock expansion completer, or nil when unset.
func (p *MockProvider) QueryExpander() ai.Completer {
	if p.expander == nil {
		return nil
	}
	return p.expander
}

// Reranker returns the mock reranking completer, or nil when unset.
func (p *MockProvider) Reranker() ai.Completer {
	if p.reranker == nil {
		return nil
	}
	return p.reranker
}

// Summarizer returns the mock summarization completer, or nil when unset.
func (p *MockProvider) Summarizer() ai.Completer {
	if p.summarizer == nil {
		return nil
	}
	return p.summarizer
}

// Config returns the mock provider configuration.
func (p *MockProvider) Config() *ai.Config {
	return p.config
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
