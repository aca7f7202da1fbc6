package repository

import (
	"context"

	"commandlayer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AssetRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAssetRepository(db *pgxpool.Pool, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AssetRepository) List(ctx context.Context) ([]models.Asset, error) {
	query := squirrel.Select("id", "type", "name", "active", "created_at").
		From("assets").
		OrderBy("name ASC").
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

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		if err := rows.Scan(&asset.ID, &asset.Type, &asset.Name, &asset.Active, &asset.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}
