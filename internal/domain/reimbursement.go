package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReimbursementKind distinguishes expense claims from salary disbursements.
type ReimbursementKind string

const (
	ReimbursementKindExpense ReimbursementKind = "EXPENSE"
	ReimbursementKindSalary  ReimbursementKind = "SALARY"
)

// ReimbursementStatus is the review lifecycle of a payment request.
// PENDING -> APPROVED | REJECTED, APPROVED -> PAID.
type ReimbursementStatus string

const (
	ReimbursementStatusPending  ReimbursementStatus = "PENDING"
	ReimbursementStatusApproved ReimbursementStatus = "APPROVED"
	ReimbursementStatusRejected ReimbursementStatus = "REJECTED"
	ReimbursementStatusPaid     ReimbursementStatus = "PAID"
)

// Reimbursement represents a payment request submitted by a user and reviewed
// by an admin. Approved requests are aggregated into Safe-Wallet payout
// batches, then marked PAID once the batch executes.
type Reimbursement struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Kind          ReimbursementKind
	Status        ReimbursementStatus
	Amount        decimal.Decimal
	Currency      string
	WalletAddress string
	Description   string
	SubmittedAt   time.Time
	ReviewerID    *uuid.UUID
	ReviewedAt    *time.Time
	PaidAt        *time.Time
}

// Validate ensures the reimbursement adheres to domain rules
func (r *Reimbursement) Validate() error {
	if r.Kind != ReimbursementKindExpense && r.Kind != ReimbursementKindSalary {
		return fmt.Errorf("%w: kind must be EXPENSE or SALARY", ErrValidation)
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: reimbursement amount must be positive", ErrValidation)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: reimbursement currency cannot be empty", ErrValidation)
	}
	if r.WalletAddress == "" {
		return fmt.Errorf("%w: reimbursement wallet address cannot be empty", ErrValidation)
	}
	return nil
}

// CanTransitionTo reports whether the status change is allowed by the
// review lifecycle.
func (r *Reimbursement) CanTransitionTo(next ReimbursementStatus) bool {
	switch r.Status {
	case ReimbursementStatusPending:
		return next == ReimbursementStatusApproved || next == ReimbursementStatusRejected
	case ReimbursementStatusApproved:
		return next == ReimbursementStatusPaid
	default:
		return false
	}
}
