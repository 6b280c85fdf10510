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

// recordRepository implements domain.AssetRecordRepository
type recordRepository struct {
	db *DB
}

// NewRecordRepository creates a new asset record repository
func NewRecordRepository(db *DB) domain.AssetRecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `id, asset_id, user_id, type, amount, amount_change, value_after, date, note, created_at`

// GetByID retrieves a record by its ID
func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AssetRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM asset_records WHERE id = $1`
	return r.scanRecord(r.db.conn(ctx).QueryRowContext(ctx, query, id))
}

// ListByAssetID retrieves all records of an asset. The chronological order is
// the replay engine's concern, so no ORDER BY is promised here.
func (r *recordRepository) ListByAssetID(ctx context.Context, assetID uuid.UUID) ([]*domain.AssetRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM asset_records WHERE asset_id = $1`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AssetRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Create creates a new record
func (r *recordRepository) Create(ctx context.Context, record *domain.AssetRecord) error {
	query := `
		INSERT INTO asset_records (id, asset_id, user_id, type, amount, amount_change, value_after, date, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		record.ID,
		record.AssetID,
		record.UserID,
		string(record.Type),
		record.Amount.String(),
		record.AmountChange.String(),
		record.ValueAfter.String(),
		record.Date,
		record.Note,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset record: %w", err)
	}
	return nil
}

// Update persists a record's mutable fields
func (r *recordRepository) Update(ctx context.Context, record *domain.AssetRecord) error {
	query := `
		UPDATE asset_records
		SET amount = $1, amount_change = $2, value_after = $3, date = $4, note = $5
		WHERE id = $6
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		record.Amount.String(),
		record.AmountChange.String(),
		record.ValueAfter.String(),
		record.Date,
		record.Note,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset record: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a record
func (r *recordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM asset_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset record: %w", err)
	}
	return requireRowAffected(result)
}

func (r *recordRepository) scanRecord(row rowScanner) (*domain.AssetRecord, error) {
	var record domain.AssetRecord
	var amountStr, changeStr, afterStr string

	err := row.Scan(
		&record.ID,
		&record.AssetID,
		&record.UserID,
		&record.Type,
		&amountStr,
		&changeStr,
		&afterStr,
		&record.Date,
		&record.Note,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset record: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan asset record: %w", err)
	}

	if record.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if record.AmountChange, err = decimal.NewFromString(changeStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount_change: %w", err)
	}
	if record.ValueAfter, err = decimal.NewFromString(afterStr); err != nil {
		return nil, fmt.Errorf("failed to parse value_after: %w", err)
	}
	return &record, nil
}
