package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"commandlayer/internal/models"
	"commandlayer/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChunkStore struct {
	rows      map[ChunkKey]models.KnowledgeChunk
	listErr   error
	upsertErr error
	upserts   int
	deletes   int
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{rows: make(map[ChunkKey]models.KnowledgeChunk)}
}

func (s *fakeChunkStore) ListBySources(_ context.Context, sources []string) ([]models.KnowledgeChunk, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	wanted := make(map[string]bool, len(sources))
	for _, source := range sources {
		wanted[source] = true
	}
	var out []models.KnowledgeChunk
	for _, row := range s.rows {
		if wanted[row.Source] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeChunkStore) Upsert(_ context.Context, chunks []models.KnowledgeChunk) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts++
	for _, chunk := range chunks {
		s.rows[ChunkKey{Source: chunk.Source, Index: chunk.ChunkIndex}] = chunk
	}
	return nil
}

func (s *fakeChunkStore) DeleteByKeys(_ context.Context, keys []ChunkKey) error {
	s.deletes++
	for _, key := range keys {
		delete(s.rows, key)
	}
	return nil
}

func newTestIngestor(dir string, store ChunkStore, embedder Embedder) *Ingestor {
	cfg := &config.RAGConfig{KnowledgeBasePath: dir, ChunkSize: 20, ChunkOverlap: 4}
	return NewIngestor(cfg, store, embedder, zap.NewNop())
}

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestIngestFirstRunInsertsEverything(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "the packaging line handles boxed goods")
	writeDoc(t, dir, "policies.md", "assignments require both records to exist")

	store := newFakeChunkStore()
	ingestor := newTestIngestor(dir, store, &fakeEmbedder{})

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, summary.Total, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Deleted)
	assert.Zero(t, summary.Skipped)
	assert.Len(t, store.rows, summary.Total)

	for _, row := range store.rows {
		assert.NotEmpty(t, row.Embedding, "every stored chunk carries its vector")
		assert.Len(t, row.ContentHash, 64)
	}
}

func TestIngestUnchangedTreeSkipsEverything(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "the packaging line handles boxed goods")

	store := newFakeChunkStore()
	embedder := &fakeEmbedder{}
	ingestor := newTestIngestor(dir, store, embedder)

	_, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)
	firstCalls := embedder.calls

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Deleted)
	assert.Equal(t, summary.Total, summary.Skipped)
	assert.Equal(t, firstCalls, embedder.calls, "nothing is re-embedded")
}

func TestIngestChangedDocumentIsUpdated(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "original body")
	writeDoc(t, dir, "tasks.md", "stable body")

	store := newFakeChunkStore()
	ingestor := newTestIngestor(dir, store, &fakeEmbedder{})

	_, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	writeDoc(t, dir, "assets.md", "replaced body")

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Inserted)
	assert.Zero(t, summary.Deleted)
	assert.Equal(t, summary.Total-1, summary.Skipped)
}

func TestIngestRemovedChunksAreDeleted(t *testing.T) {
	dir := t.TempDir()
	// Long enough to split into several chunks at size 20.
	writeDoc(t, dir, "assets.md", "first window second window third window fourth window")

	store := newFakeChunkStore()
	ingestor := newTestIngestor(dir, store, &fakeEmbedder{})

	first, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)
	require.Greater(t, first.Inserted, 1)

	// Shrink the document so the tail indexes disappear.
	writeDoc(t, dir, "assets.md", "first window second window third window fourth window"[:20])

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Positive(t, summary.Deleted)
	assert.Len(t, store.rows, summary.Total)
}

func TestIngestEmbeddingFailureAbandonsRun(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "brand new content")

	store := newFakeChunkStore()
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	ingestor := newTestIngestor(dir, store, embedder)

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err, "provider failure degrades, it does not abort")

	assert.Zero(t, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Deleted)
	assert.Equal(t, summary.Total, summary.Skipped)
	assert.Zero(t, store.upserts, "no partial writes on provider failure")
	assert.Zero(t, store.deletes)
	assert.Empty(t, store.rows)
}

func TestIngestEmbeddingCountMismatchAbandonsRun(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "brand new content")

	store := newFakeChunkStore()
	embedder := &fakeEmbedder{vectors: [][]float32{}}
	ingestor := newTestIngestor(dir, store, embedder)

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, summary.Total, summary.Skipped)
	assert.Zero(t, store.upserts)
}

func TestIngestEmptyDirectoryIsANoop(t *testing.T) {
	store := newFakeChunkStore()
	ingestor := newTestIngestor(t.TempDir(), store, &fakeEmbedder{})

	summary, err := ingestor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.Total)
	assert.Zero(t, store.upserts)
}

func TestIngestListFailureAborts(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "assets.md", "content")

	store := newFakeChunkStore()
	store.listErr = errors.New("db down")
	ingestor := newTestIngestor(dir, store, &fakeEmbedder{})

	_, err := ingestor.Ingest(context.Background())
	assert.Error(t, err)
}
