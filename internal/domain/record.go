package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType classifies how a record's amount affects the running balance.
type RecordType string

const (
	// RecordTypeInitial is the synthetic first record created with the asset.
	// Its Amount is the asset's initial value.
	RecordTypeInitial RecordType = "INITIAL"
	// RecordTypeAddition adds a positive quantity to the balance.
	RecordTypeAddition RecordType = "ADDITION"
	// RecordTypeConsumption reduces the balance by the amount's magnitude.
	RecordTypeConsumption RecordType = "CONSUMPTION"
	// RecordTypeRevaluation sets the balance to an absolute target value.
	RecordTypeRevaluation RecordType = "REVALUATION"
)

// AssetRecord represents a single dated transaction affecting an asset's value.
//
// Amount stores the raw user intent and is the only input replay trusts:
// the delta magnitude for ADDITION/CONSUMPTION, the absolute target value for
// REVALUATION and INITIAL. AmountChange and ValueAfter are derived caches,
// rewritten whenever a replay finds they drifted from the recomputed chain.
// UserID is denormalized from the parent asset for ownership checks.
type AssetRecord struct {
	ID           uuid.UUID
	AssetID      uuid.UUID
	UserID       uuid.UUID
	Type         RecordType
	Amount       decimal.Decimal
	AmountChange decimal.Decimal
	ValueAfter   decimal.Decimal
	Date         time.Time
	Note         string
	CreatedAt    time.Time
}

// Validate ensures the record adheres to domain rules
// Returns an error if validation fails
func (r *AssetRecord) Validate() error {
	switch r.Type {
	case RecordTypeInitial, RecordTypeRevaluation:
		if r.Amount.IsNegative() {
			return fmt.Errorf("%w: %s amount must be an absolute value >= 0", ErrValidation, r.Type)
		}
	case RecordTypeAddition:
		if r.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: ADDITION amount must be positive", ErrValidation)
		}
	case RecordTypeConsumption:
		if r.Amount.IsZero() {
			return fmt.Errorf("%w: CONSUMPTION amount cannot be zero", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown record type %q", ErrValidation, r.Type)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: record date is required", ErrValidation)
	}
	return nil
}

// Resolution is the outcome of applying a record to a prior running balance.
type Resolution struct {
	AmountChange decimal.Decimal
	ValueAfter   decimal.Decimal
}

// Resolve computes the value delta and resulting balance for a record of the
// given type, applied on top of priorValue. Pure and deterministic; it never
// reads a record's previously derived AmountChange/ValueAfter, so repeated
// replays cannot drift.
//
// Semantics by type:
//   - ADDITION: amount is a positive quantity added to the balance.
//   - CONSUMPTION: amount is a reduction; callers may pass either sign, the
//     effect is always a decrease by |amount|.
//   - REVALUATION: amount is the absolute new balance, not a delta.
//   - INITIAL: like a revaluation pinned to the asset's initial value.
func Resolve(recordType RecordType, amount, priorValue decimal.Decimal) (Resolution, error) {
	switch recordType {
	case RecordTypeAddition:
		return Resolution{
			AmountChange: amount,
			ValueAfter:   priorValue.Add(amount),
		}, nil
	case RecordTypeConsumption:
		magnitude := amount.Abs()
		return Resolution{
			AmountChange: magnitude.Neg(),
			ValueAfter:   priorValue.Sub(magnitude),
		}, nil
	case RecordTypeRevaluation, RecordTypeInitial:
		return Resolution{
			AmountChange: amount.Sub(priorValue),
			ValueAfter:   amount,
		}, nil
	default:
		return Resolution{}, fmt.Errorf("%w: unknown record type %q", ErrValidation, recordType)
	}
}

// SortRecords orders records chronologically: by Date ascending, then
// CreatedAt ascending, then ID string ascending. The secondary keys make the
// order stable and reproducible across replays even when records share a date.
func SortRecords(records []*AssetRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID.String() < records[j].ID.String()
	})
}
