package repository

import (
	"context"

	"commandlayer/internal/models"
	"commandlayer/internal/rag"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// ListBySources returns the stored chunks for the given sources, without
// embeddings; the ingestion diff only needs identity and content hashes.
func (r *KnowledgeRepository) ListBySources(ctx context.Context, sources []string) ([]models.KnowledgeChunk, error) {
	query := squirrel.Select("id", "source", "chunk_index", "content_hash").
		From("knowledge_chunks").
		Where(squirrel.Eq{"source": sources}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.KnowledgeChunk
	for rows.Next() {
		var chunk models.KnowledgeChunk
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.ChunkIndex, &chunk.ContentHash); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// Upsert inserts chunks, replacing content, hash and embedding on a
// (source, chunk_index) conflict.
func (r *KnowledgeRepository) Upsert(ctx context.Context, chunks []models.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := squirrel.Insert("knowledge_chunks").
		Columns("id", "source", "chunk_index", "content", "content_hash", "embedding", "created_at", "updated_at").
		Suffix(`ON CONFLICT (source, chunk_index) DO UPDATE SET
			content = EXCLUDED.content,
			content_hash = EXCLUDED.content_hash,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	for _, chunk := range chunks {
		embedding := pgtype.FlatArray[float32](chunk.Embedding)
		query = query.Values(chunk.ID, chunk.Source, chunk.ChunkIndex, chunk.Content, chunk.ContentHash, embedding, chunk.CreatedAt, chunk.UpdatedAt)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeleteByKeys removes the chunks identified by (source, chunk_index) pairs.
func (r *KnowledgeRepository) DeleteByKeys(ctx context.Context, keys []rag.ChunkKey) error {
	if len(keys) == 0 {
		return nil
	}

	or := make(squirrel.Or, 0, len(keys))
	for _, key := range keys {
		or = append(or, squirrel.Eq{"source": key.Source, "chunk_index": key.Index})
	}

	query := squirrel.Delete("knowledge_chunks").
		Where(or).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchSimilar ranks all stored chunks by ascending cosine distance to the
// query embedding and returns the top-K.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.KnowledgeChunk, error) {
	embeddingArray := pgtype.FlatArray[float32](embedding)

	query := squirrel.Select("source", "chunk_index", "content").
		Column(squirrel.Expr("(embedding <=> ?) AS distance", embeddingArray)).
		From("knowledge_chunks").
		OrderBy("distance ASC").
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.KnowledgeChunk
	for rows.Next() {
		var chunk models.KnowledgeChunk
		var distance float64
		if err := rows.Scan(&chunk.Source, &chunk.ChunkIndex, &chunk.Content, &distance); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}
