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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/reembed"
	"github.com/poiesic/recall/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Semantic knowledge store with hybrid retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Store documents from a file or stdin",
				ArgsUsage: "[file ...]",
				Action:    ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "type",
						Usage: "Document type (conversation, document, decision, resolution)",
						Value: string(core.DocumentTypeDocument),
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Namespace to store the documents under",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source label for the documents",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Project root to associate with the documents",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Metadata entry as key=value (repeatable)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search stored documents",
				ArgsUsage: "query",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Restrict search to a namespace",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict search to a document type",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum embedding similarity (0-1)",
						Value: 0.7,
					},
					&cli.BoolFlag{
						Name:  "hybrid",
						Usage: "Fuse lexical relevance into the final score",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "expand",
						Usage: "Apply LLM query expansion (requires --expansion-model)",
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Apply LLM reranking (requires --rerank-model)",
					},
					&cli.BoolFlag{
						Name:  "full-content",
						Usage: "Print full document content instead of summaries",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Current project root for the affinity boost",
					},
				),
			},
			{
				Name:      "get",
				Usage:     "Fetch a document by ID",
				ArgsUsage: "id",
				Action:    getCommand,
				Flags:     storeFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all documents with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags shared by every command that opens a full store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat service host URL for augmentation stages",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "expansion-model",
			Usage: "Model for query expansion (empty disables the stage)",
		},
		&cli.StringFlag{
			Name:  "rerank-model",
			Usage: "Model for result reranking (empty disables the stage)",
		},
		&cli.StringFlag{
			Name:  "summary-model",
			Usage: "Model for document summarization (empty disables the stage)",
		},
	}
}

func openStore(c *cli.Context) (*recall.Store, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("chat-host")),
		ai.WithExpansionModel(c.String("expansion-model")),
		ai.WithRerankModel(c.String("rerank-model")),
		ai.WithSummaryModel(c.String("summary-model")),
	)

	store, err := recall.NewStore(c.String("db"), recall.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	documentType := core.DocumentType(c.String("type"))
	if err := core.ValidateDocumentType(documentType); err != nil {
		return err
	}

	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	// One document per file argument, or one from stdin.
	var contents []string
	sourcePath := ""
	if c.Args().Len() > 0 {
		for _, path := range c.Args().Slice() {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			contents = append(contents, string(data))
		}
		sourcePath = c.Args().First()
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		contents = []string{string(data)}
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := &ingestion.IngestOptions{
		Namespace:   c.String("namespace"),
		Source:      c.String("source"),
		Metadata:    metadata,
		ProjectPath: c.String("project"),
		SourcePath:  sourcePath,
	}

	if err := store.Ingest(ctx, documentType, contents, opts); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// Give the async processors a moment before the store closes. Documents
	// missed here are picked up by a later reembed run.
	time.Sleep(500 * time.Millisecond)

	fmt.Printf("Ingested %d document(s)\n", len(contents))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() == 0 {
		return fmt.Errorf("search query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	// The flag always carries a value, so an explicit --threshold 0 reaches
	// the searcher instead of falling back to its default.
	threshold := float32(c.Float64("threshold"))

	request := &core.SearchRequest{
		Query:          query,
		Namespace:      c.String("namespace"),
		DocumentType:   core.DocumentType(c.String("type")),
		Limit:          c.Int("limit"),
		Threshold:      &threshold,
		ProjectPath:    c.String("project"),
		Hybrid:         c.Bool("hybrid"),
		Expand:         c.Bool("expand"),
		Rerank:         c.Bool("rerank"),
		IncludeContent: c.Bool("full-content"),
	}

	set, err := store.Search(ctx, request)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d result(s) (mode: %s)\n", set.TotalFound, set.Mode)
	if set.ExpandedQuery != "" {
		fmt.Printf("Expanded query: %s\n", set.ExpandedQuery)
	}
	for i, result := range set.Results {
		fmt.Printf("\n%d. [%d] score %.3f (embedding %.3f", i+1, result.Document.Id,
			result.FinalScore, result.EmbeddingScore)
		if result.KeywordScore != nil {
			fmt.Printf(", keyword %.3f", *result.KeywordScore)
		}
		fmt.Print(")")
		if result.SameProject {
			fmt.Print(" [project]")
		}
		fmt.Printf("\n%s\n", result.Display)
	}
	return nil
}

func getCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one document ID is required")
	}
	rawID, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document ID %q: %w", c.Args().First(), err)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(ctx, core.ID(rawID))
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	fmt.Printf("ID:        %d\n", doc.Id)
	fmt.Printf("Type:      %s\n", doc.DocumentType)
	fmt.Printf("Namespace: %s\n", doc.Namespace)
	fmt.Printf("Source:    %s\n", doc.Source)
	if doc.ProjectPath != "" {
		fmt.Printf("Project:   %s\n", doc.ProjectPath)
	}
	fmt.Printf("Created:   %s\n", doc.CreatedAt.Format(time.RFC3339))
	if doc.BriefSummary != "" {
		fmt.Printf("Summary:   %s\n", doc.BriefSummary)
	}
	for k, v := range doc.Metadata {
		fmt.Printf("Meta:      %s=%s\n", k, v)
	}
	fmt.Printf("\n%s\n", doc.Content)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reembedding config
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reembedder
	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func parseMetadata(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q: expected key=value", entry)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
