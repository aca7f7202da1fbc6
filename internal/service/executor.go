package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commandlayer/internal/dto"
	"commandlayer/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateAssignment reports an insert rejected by the unique
// constraint on (asset_id, task_id). Stores translate their backend's
// unique-violation error into this sentinel.
var ErrDuplicateAssignment = errors.New("assignment already exists")

// AssignmentStore is the persistence surface the executor needs. Find
// returns (nil, nil) when no row matches.
type AssignmentStore interface {
	FindByAssetAndTask(ctx context.Context, assetID, taskID uuid.UUID) (*models.Assignment, error)
	Insert(ctx context.Context, assignment *models.Assignment) error
}

// CommandExecutor applies validated actions to the store. Executing the
// same logical command twice never creates two assignments and never errors.
type CommandExecutor struct {
	assignments AssignmentStore
	logger      *zap.Logger
}

func NewCommandExecutor(assignments AssignmentStore, logger *zap.Logger) *CommandExecutor {
	return &CommandExecutor{assignments: assignments, logger: logger}
}

// Execute performs the mutation for a validated action/payload pair. The
// payload must already be normalized; an unsupported action here is a
// programming error, not a client error.
func (e *CommandExecutor) Execute(ctx context.Context, action string, payload map[string]any) (*dto.AssignmentResult, error) {
	if action != ActionAssignTask {
		return nil, fmt.Errorf("executor: unsupported action %q", action)
	}

	assetID, err := uuid.Parse(payload["asset_id"].(string))
	if err != nil {
		return nil, fmt.Errorf("executor: invalid asset_id: %w", err)
	}
	taskID, err := uuid.Parse(payload["task_id"].(string))
	if err != nil {
		return nil, fmt.Errorf("executor: invalid task_id: %w", err)
	}

	existing, err := e.assignments.FindByAssetAndTask(ctx, assetID, taskID)
	if err != nil {
		return nil, fmt.Errorf("executor: lookup failed: %w", err)
	}
	if existing != nil {
		return &dto.AssignmentResult{
			AssignmentID:  existing.ID.String(),
			AlreadyExists: true,
		}, nil
	}

	assignment := &models.Assignment{
		ID:         uuid.New(),
		AssetID:    assetID,
		TaskID:     taskID,
		AssignedAt: time.Now().UTC(),
	}
	if err := e.assignments.Insert(ctx, assignment); err != nil {
		// The unique constraint on (asset_id, task_id) closes the
		// check-then-insert race; a concurrent identical request is a no-op.
		if errors.Is(err, ErrDuplicateAssignment) {
			raced, findErr := e.assignments.FindByAssetAndTask(ctx, assetID, taskID)
			if findErr == nil && raced != nil {
				e.logger.Debug("Assignment insert raced with an identical request",
					zap.String("asset_id", assetID.String()),
					zap.String("task_id", taskID.String()),
				)
				return &dto.AssignmentResult{
					AssignmentID:  raced.ID.String(),
					AlreadyExists: true,
				}, nil
			}
		}
		return nil, fmt.Errorf("executor: insert failed: %w", err)
	}

	return &dto.AssignmentResult{
		AssignmentID:  assignment.ID.String(),
		AlreadyExists: false,
	}, nil
}
