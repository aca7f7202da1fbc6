package repository

import (
	"context"
	"errors"

	"commandlayer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type APIKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAPIKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByHash returns the key matching the digest or (nil, nil) when absent.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	query := squirrel.Select("id", "name", "key_hash", "role", "active", "created_at").
		From("api_keys").
		Where(squirrel.Eq{"key_hash": keyHash}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var key models.APIKey
	err = r.db.QueryRow(ctx, sql, args...).Scan(&key.ID, &key.Name, &key.KeyHash, &key.Role, &key.Active, &key.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &key, nil
}

func (r *APIKeyRepository) Insert(ctx context.Context, key *models.APIKey) error {
	query := squirrel.Insert("api_keys").
		Columns("id", "name", "key_hash", "role", "active", "created_at").
		Values(key.ID, key.Name, key.KeyHash, key.Role, key.Active, key.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
