package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxManager runs a function inside a single database transaction. The
// transactional handle travels in the context fn receives; repository calls
// made with that context join the transaction. Commit on nil return,
// rollback on error or panic — no partial writes are ever observable.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetByIDForUpdate retrieves an asset and row-locks it for the duration
	// of the enclosing transaction, serializing concurrent mutations of the
	// same asset's record chain.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Asset, error)

	// ListByUserID retrieves all assets owned by a user
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// UpdateCurrentValue persists a recomputed current value
	UpdateCurrentValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error

	// Delete removes an asset; its records are removed with it
	Delete(ctx context.Context, id uuid.UUID) error
}

// AssetRecordRepository defines the interface for record persistence operations
type AssetRecordRepository interface {
	// GetByID retrieves a record by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*AssetRecord, error)

	// ListByAssetID retrieves all records of an asset. Order is not
	// guaranteed; callers sort via SortRecords.
	ListByAssetID(ctx context.Context, assetID uuid.UUID) ([]*AssetRecord, error)

	// Create creates a new record
	Create(ctx context.Context, record *AssetRecord) error

	// Update persists a record's mutable fields (amount, derived values,
	// date, note)
	Update(ctx context.Context, record *AssetRecord) error

	// Delete removes a record
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*User, error)

	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update persists a user's mutable profile fields
	Update(ctx context.Context, user *User) error
}

// ReimbursementRepository defines the interface for reimbursement persistence
type ReimbursementRepository interface {
	// GetByID retrieves a reimbursement by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Reimbursement, error)

	// ListByUserID retrieves all reimbursements submitted by a user
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*Reimbursement, error)

	// ListByStatus retrieves all reimbursements in a given status
	ListByStatus(ctx context.Context, status ReimbursementStatus) ([]*Reimbursement, error)

	// Create creates a new reimbursement
	Create(ctx context.Context, reimbursement *Reimbursement) error

	// Update persists status transitions and review metadata
	Update(ctx context.Context, reimbursement *Reimbursement) error
}
