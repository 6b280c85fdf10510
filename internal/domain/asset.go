package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset represents a tracked store of value owned by a single user (a crypto
// wallet, an equipment pool, a deposit).
//
// CurrentValue is a cache: it must always equal the ValueAfter of the
// chronologically last record, which in turn is the result of replaying the
// full record history starting from InitialValue. The ledger service is the
// only writer of CurrentValue.
type Asset struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Category     string
	Currency     string
	InitialValue decimal.Decimal // immutable after creation
	CurrentValue decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: asset name cannot be empty", ErrValidation)
	}
	if a.Currency == "" {
		return fmt.Errorf("%w: asset currency cannot be empty", ErrValidation)
	}
	if a.InitialValue.IsNegative() {
		return fmt.Errorf("%w: initial value cannot be negative", ErrValidation)
	}
	return nil
}

// OwnedBy reports whether the asset belongs to the given user.
func (a *Asset) OwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}
