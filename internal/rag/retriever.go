package rag

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"commandlayer/internal/models"
	"commandlayer/pkg/config"

	"go.uber.org/zap"
)

var uuidLiteralRegex = regexp.MustCompile(
	`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
)

// policyDocument is always included by the lite backend when present.
const policyDocument = "policies.md"

// Retriever supplies reference context for a raw command text.
type Retriever interface {
	GetContext(ctx context.Context, rawText string) (Context, error)
}

// ChunkSearcher ranks stored chunks by ascending cosine distance.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.KnowledgeChunk, error)
}

// NewRetriever builds the backend selected by configuration, once at
// startup. An unknown mode degrades to the off backend but keeps the
// configured name so it shows up in responses and logs.
func NewRetriever(cfg *config.RAGConfig, embedder Embedder, searcher ChunkSearcher, logger *zap.Logger) Retriever {
	switch cfg.Mode {
	case ModeOff:
		return &offRetriever{mode: ModeOff}
	case ModeLite:
		return &liteRetriever{dir: cfg.KnowledgeBasePath, maxChars: cfg.MaxChars, logger: logger}
	case ModeVector:
		return &vectorRetriever{
			embedder: embedder,
			searcher: searcher,
			topK:     cfg.TopK,
			maxChars: cfg.MaxChars,
			logger:   logger,
		}
	default:
		logger.Warn("Unrecognized RAG mode, retrieval disabled", zap.String("mode", cfg.Mode))
		return &offRetriever{mode: cfg.Mode}
	}
}

type offRetriever struct {
	mode string
}

func (r *offRetriever) GetContext(_ context.Context, _ string) (Context, error) {
	return Context{Enabled: false, Mode: r.mode}, nil
}

// liteRetriever reads the knowledge directory at call time, no persistence.
type liteRetriever struct {
	dir      string
	maxChars int
	logger   *zap.Logger
}

func (r *liteRetriever) GetContext(_ context.Context, rawText string) (Context, error) {
	result := Context{Enabled: true, Mode: ModeLite}

	contents := r.readDocuments()
	if len(contents) == 0 {
		return result, nil
	}

	selected := selectDocuments(rawText, contents)

	blocks := make([]sourceBlock, 0, len(selected))
	for _, name := range selected {
		blocks = append(blocks, sourceBlock{source: name, content: contents[name]})
	}
	result.ContextText, result.Sources = buildBudgetedContext(blocks, r.maxChars)
	return result, nil
}

func (r *liteRetriever) readDocuments() map[string]string {
	info, err := os.Stat(r.dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.md"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)

	contents := make(map[string]string, len(paths))
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Skipping unreadable knowledge document", zap.String("path", path))
			continue
		}
		contents[filepath.Base(path)] = string(body)
	}
	return contents
}

// selectDocuments picks documents mentioning any identifier literal found in
// rawText; with no matches it picks everything, the policy document first.
func selectDocuments(rawText string, contents map[string]string) []string {
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)

	_, hasPolicy := contents[policyDocument]
	found := uuidLiteralRegex.FindAllString(rawText, -1)

	if len(found) > 0 {
		var matched []string
		for _, name := range names {
			for _, id := range found {
				if containsFold(contents[name], id) {
					matched = append(matched, name)
					break
				}
			}
		}
		if hasPolicy && !containsString(matched, policyDocument) {
			matched = append(matched, policyDocument)
		}
		return matched
	}

	var selected []string
	if hasPolicy {
		selected = append(selected, policyDocument)
	}
	for _, name := range names {
		if name == policyDocument {
			continue
		}
		selected = append(selected, name)
	}
	return selected
}

// vectorRetriever embeds the query and ranks stored chunks by cosine
// distance. Provider and store failures propagate typed; an empty embedding
// or empty store yields an enabled context with zero retrieved chunks so
// "no data" stays distinguishable from "feature off".
type vectorRetriever struct {
	embedder Embedder
	searcher ChunkSearcher
	topK     int
	maxChars int
	logger   *zap.Logger
}

func (r *vectorRetriever) GetContext(ctx context.Context, rawText string) (Context, error) {
	result := Context{Enabled: true, Mode: ModeVector, TopK: r.topK}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{rawText})
	if err != nil {
		return Context{}, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return result, nil
	}

	chunks, err := r.searcher.SearchSimilar(ctx, embeddings[0], r.topK)
	if err != nil {
		return Context{}, err
	}
	if len(chunks) == 0 {
		return result, nil
	}

	blocks := make([]sourceBlock, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, sourceBlock{source: chunk.Source, content: chunk.Content})
	}
	result.ContextText, result.Sources = buildBudgetedContext(blocks, r.maxChars)
	result.RetrievedChunks = len(chunks)
	return result, nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// containsFold matches uuid literals case-insensitively.
func containsFold(haystack, needle string) bool {
	return needle != "" && strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
