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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
//
// The embedding service is always required. The augmentation stages (query
// expansion, reranking, summarization) are each enabled by configuring a
// model identifier; an empty model disables the stage.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API used by
	// all augmentation stages.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ExpansionModel enables query expansion when non-empty.
	ExpansionModel string
	// ExpansionTemperature is the sampling temperature for expansion calls.
	// Default: 0.3
	ExpansionTemperature float64
	// ExpansionMaxTokens bounds the expansion response length.
	// Default: 50
	ExpansionMaxTokens int

	// RerankModel enables result reranking when non-empty.
	RerankModel string
	// RerankTemperature is the sampling temperature for reranking calls.
	// Default: 0.0
	RerankTemperature float64
	// RerankMaxTokens bounds the reranking response length.
	// Default: 100
	RerankMaxTokens int

	// SummaryModel enables document summarization when non-empty.
	SummaryModel string
	// SummaryTemperature is the sampling temperature for summary calls.
	// Default: 0.3
	SummaryTemperature float64
	// SummaryMaxTokens bounds the summary response length.
	// Default: 150
	SummaryMaxTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat completion service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithExpansionModel enables query expansion with the given model.
func WithExpansionModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExpansionModel = model
	}
}

// WithRerankModel enables result reranking with the given model.
func WithRerankModel(model string) ConfigOption {
	return func(c *Config) {
		c.RerankModel = model
	}
}

// WithSummaryModel enables document summarization with the given model.
func WithSummaryModel(model string) ConfigOption {
	return func(c *Config) {
		c.SummaryModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, embedding and chat use the same host and all augmentation
// stages are disabled.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:        defaultHost,
		ChatHost:             defaultHost,
		EmbeddingModel:       "embeddinggemma",
		ExpansionTemperature: 0.3,
		ExpansionMaxTokens:   50,
		RerankTemperature:    0.0,
		RerankMaxTokens:      100,
		SummaryTemperature:   0.3,
		SummaryMaxTokens:     150,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	    WithExpansionModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.ChatHost != "" && !strings.HasSuffix(c.ChatHost, "/v1") {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
		c.ChatHost = c.ChatHost + "/v1"
	}
}

// ChatEnabled reports whether any augmentation stage is configured.
func (c *Config) ChatEnabled() bool {
	return c.ExpansionModel != "" || c.RerankModel != "" || c.SummaryModel != ""
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatEnabled() && c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required when an augmentation model is configured")
	}
	if c.ExpansionTemperature < 0 || c.ExpansionTemperature > 2 {
		return errors.New("ai config: ExpansionTemperature must be between 0 and 2")
	}
	if c.RerankTemperature < 0 || c.RerankTemperature > 2 {
		return errors.New("ai config: RerankTemperature must be between 0 and 2")
	}
	if c.SummaryTemperature < 0 || c.SummaryTemperature > 2 {
		return errors.New("ai config: SummaryTemperature must be between 0 and 2")
	}
	if c.ExpansionModel != "" && c.ExpansionMaxTokens < 1 {
		return errors.New("ai config: ExpansionMaxTokens must be positive")
	}
	if c.RerankModel != "" && c.RerankMaxTokens < 1 {
		return errors.New("ai config: RerankMaxTokens must be positive")
	}
	if c.SummaryModel != "" && c.SummaryMaxTokens < 1 {
		return errors.New("ai config: SummaryMaxTokens must be positive")
	}
	return nil
}
