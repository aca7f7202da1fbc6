package repository

import (
	"context"

	"commandlayer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CommandLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCommandLogRepository(db *pgxpool.Pool, logger *zap.Logger) *CommandLogRepository {
	return &CommandLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CommandLogRepository) Insert(ctx context.Context, log *models.CommandLog) error {
	query := squirrel.Insert("command_logs").
		Columns("id", "raw_text", "intent_json", "status", "api_key_id", "created_at").
		Values(log.ID, log.RawText, log.IntentJSON, log.Status, log.APIKeyID, log.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CommandLogRepository) List(ctx context.Context, limit, offset int) ([]models.CommandLog, error) {
	query := squirrel.Select("id", "raw_text", "intent_json", "status", "api_key_id", "created_at").
		From("command_logs").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var logs []models.CommandLog
	for rows.Next() {
		var log models.CommandLog
		if err := rows.Scan(&log.ID, &log.RawText, &log.IntentJSON, &log.Status, &log.APIKeyID, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
