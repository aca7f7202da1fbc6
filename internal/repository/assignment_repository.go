package repository

import (
	"context"
	"errors"

	"commandlayer/internal/models"
	"commandlayer/internal/service"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AssignmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAssignmentRepository(db *pgxpool.Pool, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: logger,
	}
}

// FindByAssetAndTask returns the assignment for (asset_id, task_id) or
// (nil, nil) when none exists.
func (r *AssignmentRepository) FindByAssetAndTask(ctx context.Context, assetID, taskID uuid.UUID) (*models.Assignment, error) {
	query := squirrel.Select("id", "asset_id", "task_id", "assigned_at").
		From("assignments").
		Where(squirrel.Eq{"asset_id": assetID, "task_id": taskID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Assignment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.AssetID, &a.TaskID, &a.AssignedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// Insert stores the assignment. A unique violation on (asset_id, task_id)
// is translated to service.ErrDuplicateAssignment.
func (r *AssignmentRepository) Insert(ctx context.Context, a *models.Assignment) error {
	query := squirrel.Insert("assignments").
		Columns("id", "asset_id", "task_id", "assigned_at").
		Values(a.ID, a.AssetID, a.TaskID, a.AssignedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return service.ErrDuplicateAssignment
	}
	return err
}
