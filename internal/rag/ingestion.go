package rag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"commandlayer/internal/models"
	"commandlayer/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder turns a batch of texts into one vector per text, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkKey identifies a stored chunk.
type ChunkKey struct {
	Source string
	Index  int
}

// ChunkStore is the persistence surface the ingestion diff needs.
type ChunkStore interface {
	ListBySources(ctx context.Context, sources []string) ([]models.KnowledgeChunk, error)
	Upsert(ctx context.Context, chunks []models.KnowledgeChunk) error
	DeleteByKeys(ctx context.Context, keys []ChunkKey) error
}

// Summary reports what one ingestion run did.
type Summary struct {
	Inserted int
	Updated  int
	Deleted  int
	Skipped  int
	Total    int
}

// Ingestor diffs the knowledge-base directory against stored chunks and
// embeds only what changed. Runs are batch jobs; an external scheduler must
// serialize them.
type Ingestor struct {
	store    ChunkStore
	embedder Embedder
	dir      string
	size     int
	overlap  int
	logger   *zap.Logger
}

func NewIngestor(cfg *config.RAGConfig, store ChunkStore, embedder Embedder, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		store:    store,
		embedder: embedder,
		dir:      cfg.KnowledgeBasePath,
		size:     cfg.ChunkSize,
		overlap:  cfg.ChunkOverlap,
		logger:   logger,
	}
}

// Ingest splits, hashes and diffs the source tree. Unchanged hashes are
// skipped, new (source, chunk_index) pairs inserted, changed hashes updated
// and stored pairs absent from the new split deleted. If the embeddings call
// fails or returns a mismatched count, the whole upsert for this run is
// abandoned and everything pending is reported as skipped.
func (i *Ingestor) Ingest(ctx context.Context) (*Summary, error) {
	chunks := LoadMarkdownChunks(i.dir, i.size, i.overlap)
	if len(chunks) == 0 {
		return &Summary{}, nil
	}

	sourceSet := make(map[string]bool)
	for _, chunk := range chunks {
		sourceSet[chunk.Source] = true
	}
	sources := make([]string, 0, len(sourceSet))
	for source := range sourceSet {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	existing, err := i.store.ListBySources(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored chunks: %w", err)
	}

	existingMap := make(map[ChunkKey]models.KnowledgeChunk, len(existing))
	for _, row := range existing {
		existingMap[ChunkKey{Source: row.Source, Index: row.ChunkIndex}] = row
	}
	incoming := make(map[ChunkKey]bool, len(chunks))
	for _, chunk := range chunks {
		incoming[ChunkKey{Source: chunk.Source, Index: chunk.Index}] = true
	}

	var toEmbed []Chunk
	summary := &Summary{Total: len(chunks)}
	for _, chunk := range chunks {
		row, ok := existingMap[ChunkKey{Source: chunk.Source, Index: chunk.Index}]
		if ok && row.ContentHash == chunk.ContentHash {
			summary.Skipped++
			continue
		}
		if ok {
			summary.Updated++
		} else {
			summary.Inserted++
		}
		toEmbed = append(toEmbed, chunk)
	}

	embeddings := i.embedChunks(ctx, toEmbed)
	if embeddings == nil && len(toEmbed) > 0 {
		// No partial embedding writes: report the pending work as skipped.
		summary.Skipped += len(toEmbed)
		summary.Inserted = 0
		summary.Updated = 0
		return summary, nil
	}

	var toDelete []ChunkKey
	for key := range existingMap {
		if !incoming[key] {
			toDelete = append(toDelete, key)
		}
	}
	if len(toDelete) > 0 {
		if err := i.store.DeleteByKeys(ctx, toDelete); err != nil {
			return nil, fmt.Errorf("failed to delete stale chunks: %w", err)
		}
		summary.Deleted = len(toDelete)
	}

	if len(toEmbed) > 0 {
		now := time.Now().UTC()
		rows := make([]models.KnowledgeChunk, 0, len(toEmbed))
		for idx, chunk := range toEmbed {
			rows = append(rows, models.KnowledgeChunk{
				ID:          uuid.New(),
				Source:      chunk.Source,
				ChunkIndex:  chunk.Index,
				Content:     chunk.Content,
				ContentHash: chunk.ContentHash,
				Embedding:   embeddings[idx],
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if err := i.store.Upsert(ctx, rows); err != nil {
			return nil, fmt.Errorf("failed to upsert chunks: %w", err)
		}
	}

	return summary, nil
}

// embedChunks returns nil on any provider failure or count mismatch;
// degradation is preferred over aborting the run with an error.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []Chunk) [][]float32 {
	if len(chunks) == 0 {
		return [][]float32{}
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Content)
	}

	embeddings, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		i.logger.Warn("Embeddings call failed, abandoning upsert for this run", zap.Error(err))
		return nil
	}
	if len(embeddings) != len(chunks) {
		i.logger.Warn("Embeddings count mismatch, abandoning upsert for this run",
			zap.Int("expected", len(chunks)),
			zap.Int("got", len(embeddings)),
		)
		return nil
	}
	return embeddings
}
