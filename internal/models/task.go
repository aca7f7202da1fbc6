package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusScheduled TaskStatus = "scheduled"
	TaskStatusCancelled TaskStatus = "cancelled"
	TaskStatusCompleted TaskStatus = "completed"
)

type Task struct {
	ID           uuid.UUID  `db:"id"`
	Title        string     `db:"title"`
	ScheduledFor time.Time  `db:"scheduled_for"`
	Status       TaskStatus `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
}
