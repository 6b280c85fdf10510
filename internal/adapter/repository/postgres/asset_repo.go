package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, user_id, name, category, currency, initial_value, current_value, created_at, updated_at`

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return r.scanAsset(r.db.conn(ctx).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves an asset and row-locks it until the enclosing
// transaction ends, serializing concurrent mutations of the same asset.
func (r *assetRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 FOR UPDATE`
	return r.scanAsset(r.db.conn(ctx).QueryRowContext(ctx, query, id))
}

// ListByUserID retrieves all assets owned by a user
func (r *assetRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := r.scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, user_id, name, category, currency, initial_value, current_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		asset.ID,
		asset.UserID,
		asset.Name,
		asset.Category,
		asset.Currency,
		asset.InitialValue.String(),
		asset.CurrentValue.String(),
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}

// UpdateCurrentValue persists a recomputed current value
func (r *assetRepository) UpdateCurrentValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	query := `UPDATE assets SET current_value = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.conn(ctx).ExecContext(ctx, query, value.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update asset current value: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes an asset; records cascade at the schema level
func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return requireRowAffected(result)
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *assetRepository) scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var initialStr, currentStr string

	err := row.Scan(
		&asset.ID,
		&asset.UserID,
		&asset.Name,
		&asset.Category,
		&asset.Currency,
		&initialStr,
		&currentStr,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if asset.InitialValue, err = decimal.NewFromString(initialStr); err != nil {
		return nil, fmt.Errorf("failed to parse initial_value: %w", err)
	}
	if asset.CurrentValue, err = decimal.NewFromString(currentStr); err != nil {
		return nil, fmt.Errorf("failed to parse current_value: %w", err)
	}
	return &asset, nil
}

// requireRowAffected maps zero-row updates/deletes to ErrNotFound.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
