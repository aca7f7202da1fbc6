package models

import (
	"time"

	"github.com/google/uuid"
)

type CommandStatus string

const (
	CommandStatusSuccess CommandStatus = "success"
	CommandStatusNoop    CommandStatus = "noop"
	CommandStatusFailed  CommandStatus = "failed"
)

// CommandLog is the append-only audit record for executed commands.
type CommandLog struct {
	ID         uuid.UUID     `db:"id"`
	RawText    string        `db:"raw_text"`
	IntentJSON string        `db:"intent_json"`
	Status     CommandStatus `db:"status"`
	APIKeyID   *uuid.UUID    `db:"api_key_id"`
	CreatedAt  time.Time     `db:"created_at"`
}
