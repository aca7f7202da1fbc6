package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is one embedded window of a knowledge-base document.
// (source, chunk_index) is unique; content_hash drives change detection.
type KnowledgeChunk struct {
	ID          uuid.UUID `db:"id"`
	Source      string    `db:"source"`
	ChunkIndex  int       `db:"chunk_index"`
	Content     string    `db:"content"`
	ContentHash string    `db:"content_hash"`
	Embedding   []float32 `db:"embedding"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
