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

// reimbursementRepository implements domain.ReimbursementRepository
type reimbursementRepository struct {
	db *DB
}

// NewReimbursementRepository creates a new reimbursement repository
func NewReimbursementRepository(db *DB) domain.ReimbursementRepository {
	return &reimbursementRepository{db: db}
}

const reimbursementColumns = `id, user_id, kind, status, amount, currency, wallet_address, description, submitted_at, reviewer_id, reviewed_at, paid_at`

// GetByID retrieves a reimbursement by its ID
func (r *reimbursementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reimbursement, error) {
	query := `SELECT ` + reimbursementColumns + ` FROM reimbursements WHERE id = $1`
	return r.scanReimbursement(r.db.conn(ctx).QueryRowContext(ctx, query, id))
}

// ListByUserID retrieves all reimbursements submitted by a user
func (r *reimbursementRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Reimbursement, error) {
	query := `SELECT ` + reimbursementColumns + ` FROM reimbursements WHERE user_id = $1 ORDER BY submitted_at DESC`
	return r.list(ctx, query, userID)
}

// ListByStatus retrieves all reimbursements in a given status
func (r *reimbursementRepository) ListByStatus(ctx context.Context, status domain.ReimbursementStatus) ([]*domain.Reimbursement, error) {
	query := `SELECT ` + reimbursementColumns + ` FROM reimbursements WHERE status = $1 ORDER BY submitted_at`
	return r.list(ctx, query, string(status))
}

// Create creates a new reimbursement
func (r *reimbursementRepository) Create(ctx context.Context, reimbursement *domain.Reimbursement) error {
	query := `
		INSERT INTO reimbursements (id, user_id, kind, status, amount, currency, wallet_address, description, submitted_at, reviewer_id, reviewed_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		reimbursement.ID,
		reimbursement.UserID,
		string(reimbursement.Kind),
		string(reimbursement.Status),
		reimbursement.Amount.String(),
		reimbursement.Currency,
		reimbursement.WalletAddress,
		reimbursement.Description,
		reimbursement.SubmittedAt,
		reimbursement.ReviewerID,
		reimbursement.ReviewedAt,
		reimbursement.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reimbursement: %w", err)
	}
	return nil
}

// Update persists status transitions and review metadata
func (r *reimbursementRepository) Update(ctx context.Context, reimbursement *domain.Reimbursement) error {
	query := `
		UPDATE reimbursements
		SET status = $1, reviewer_id = $2, reviewed_at = $3, paid_at = $4
		WHERE id = $5
	`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		string(reimbursement.Status),
		reimbursement.ReviewerID,
		reimbursement.ReviewedAt,
		reimbursement.PaidAt,
		reimbursement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reimbursement: %w", err)
	}
	return requireRowAffected(result)
}

func (r *reimbursementRepository) list(ctx context.Context, query string, arg any) ([]*domain.Reimbursement, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reimbursements: %w", err)
	}
	defer rows.Close()

	var reimbursements []*domain.Reimbursement
	for rows.Next() {
		reimbursement, err := r.scanReimbursement(rows)
		if err != nil {
			return nil, err
		}
		reimbursements = append(reimbursements, reimbursement)
	}
	return reimbursements, rows.Err()
}

func (r *reimbursementRepository) scanReimbursement(row rowScanner) (*domain.Reimbursement, error) {
	var reimbursement domain.Reimbursement
	var amountStr string
	var reviewerID uuid.NullUUID
	var reviewedAt, paidAt sql.NullTime

	err := row.Scan(
		&reimbursement.ID,
		&reimbursement.UserID,
		&reimbursement.Kind,
		&reimbursement.Status,
		&amountStr,
		&reimbursement.Currency,
		&reimbursement.WalletAddress,
		&reimbursement.Description,
		&reimbursement.SubmittedAt,
		&reviewerID,
		&reviewedAt,
		&paidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reimbursement: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan reimbursement: %w", err)
	}

	if reimbursement.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if reviewerID.Valid {
		reimbursement.ReviewerID = &reviewerID.UUID
	}
	if reviewedAt.Valid {
		reimbursement.ReviewedAt = &reviewedAt.Time
	}
	if paidAt.Valid {
		reimbursement.PaidAt = &paidAt.Time
	}
	return &reimbursement, nil
}
