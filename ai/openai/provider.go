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


package openai

import (
	"log/slog"

	"github.com/poiesic/recall/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the embedder and the per-stage completer instances.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	expander   *Completer
	reranker   *Completer
	summarizer *Completer
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. Completers are created
// only for augmentation stages whose model is configured.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:   config,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}

	if config.ExpansionModel != "" {
		p.expander, err = newCompleter(config.ChatHost, config.ExpansionModel,
			config.ExpansionTemperature, config.ExpansionMaxTokens, "expansion")
		if err != nil {
			return nil, err
		}
	}

	if config.RerankModel != "" {
		p.reranker, err = newCompleter(config.ChatHost, config.RerankModel,
			config.RerankTemperature, config.RerankMaxTokens, "rerank")
		if err != nil {
			return nil, err
		}
	}

	if config.SummaryModel != "" {
		p.summarizer, err = newCompleter(config.ChatHost, config.SummaryModel,
			config.SummaryTemperature, config.SummaryMaxTokens, "summary")
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// QueryExpander returns the expansion completer, or nil when not configured.
func (p *Provider) QueryExpander() ai.Completer {
	if p.expander == nil {
		return nil
	}
	return p.expander
}

// Reranker returns the reranking completer, or nil when not configured.
func (p *Provider) Reranker() ai.Completer {
	if p.reranker == nil {
		return nil
	}
	return p.reranker
}

// Summarizer returns the summarization completer, or nil when not configured.
func (p *Provider) Summarizer() ai.Completer {
	if p.summarizer == nil {
		return nil
	}
	return p.summarizer
}

// Config returns the provider configuration.
func (p *Provider) Config() *ai.Config {
	return p.config
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
