package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment links a task to an asset. (asset_id, task_id) is unique and is
// the idempotency anchor for the assign_task action.
type Assignment struct {
	ID         uuid.UUID `db:"id"`
	AssetID    uuid.UUID `db:"asset_id"`
	TaskID     uuid.UUID `db:"task_id"`
	AssignedAt time.Time `db:"assigned_at"`
}
