package reimbursement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
	"github.com/reimx/reimx-backend/internal/usecase/payout"
)

// SubmitInput represents the input for submitting a payment request
type SubmitInput struct {
	Kind          domain.ReimbursementKind
	Amount        decimal.Decimal
	Currency      string
	WalletAddress string // falls back to the submitter's profile wallet
	Description   string
}

// ReviewInput represents an admin's decision on a pending request
type ReviewInput struct {
	ReimbursementID uuid.UUID
	Approve         bool
}

// ExportInput selects the approved requests to fold into a payout batch.
type ExportInput struct {
	ChainID  string
	Filter   payout.Filter
	MarkPaid bool // transition covered records to PAID in the same transaction
}

// Service handles the reimbursement review lifecycle and payout export.
type Service struct {
	Repo     domain.ReimbursementRepository
	UserRepo domain.UserRepository
	Tx       domain.TxManager
}

// NewService creates a new reimbursement Service instance
func NewService(repo domain.ReimbursementRepository, userRepo domain.UserRepository, tx domain.TxManager) *Service {
	return &Service{
		Repo:     repo,
		UserRepo: userRepo,
		Tx:       tx,
	}
}

// Submit files a new PENDING payment request for the calling user.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*domain.Reimbursement, error) {
	wallet := input.WalletAddress
	if wallet == "" {
		user, err := s.UserRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		wallet = user.WalletAddress
	}

	reimbursement := &domain.Reimbursement{
		ID:            uuid.New(),
		UserID:        userID,
		Kind:          input.Kind,
		Status:        domain.ReimbursementStatusPending,
		Amount:        input.Amount,
		Currency:      input.Currency,
		WalletAddress: wallet,
		Description:   input.Description,
		SubmittedAt:   time.Now(),
	}
	if err := reimbursement.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, reimbursement); err != nil {
		return nil, err
	}
	return reimbursement, nil
}

// ListMine retrieves the calling user's own requests.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Reimbursement, error) {
	return s.Repo.ListByUserID(ctx, userID)
}

// ListByStatus retrieves all requests in a status. Admin only.
func (s *Service) ListByStatus(ctx context.Context, callerID uuid.UUID, status domain.ReimbursementStatus) ([]*domain.Reimbursement, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Repo.ListByStatus(ctx, status)
}

// Review approves or rejects a pending request, recording the reviewer and
// decision time. Admin only.
func (s *Service) Review(ctx context.Context, reviewerID uuid.UUID, input ReviewInput) (*domain.Reimbursement, error) {
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return nil, err
	}

	next := domain.ReimbursementStatusRejected
	if input.Approve {
		next = domain.ReimbursementStatusApproved
	}

	var reviewed *domain.Reimbursement
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		reimbursement, err := s.Repo.GetByID(ctx, input.ReimbursementID)
		if err != nil {
			return err
		}
		if !reimbursement.CanTransitionTo(next) {
			return domain.WrapValidation("reimbursement is not pending review")
		}

		now := time.Now()
		reimbursement.Status = next
		reimbursement.ReviewerID = &reviewerID
		reimbursement.ReviewedAt = &now

		if err := s.Repo.Update(ctx, reimbursement); err != nil {
			return err
		}
		reviewed = reimbursement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// ExportBatch aggregates approved requests into a Safe-Wallet payout batch.
// With MarkPaid set, the covered records transition to PAID in the same
// transaction that produced the batch, so a record can never be exported into
// two batches. Admin only.
func (s *Service) ExportBatch(ctx context.Context, callerID uuid.UUID, input ExportInput) (*payout.Batch, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	var batch *payout.Batch
	err := s.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
		approved, err := s.Repo.ListByStatus(ctx, domain.ReimbursementStatusApproved)
		if err != nil {
			return err
		}

		batch, err = payout.Build(approved, input.ChainID, input.Filter)
		if err != nil {
			return err
		}
		if !input.MarkPaid {
			return nil
		}

		byID := make(map[uuid.UUID]*domain.Reimbursement, len(approved))
		for _, r := range approved {
			byID[r.ID] = r
		}

		now := time.Now()
		for _, id := range batch.CoveredIDs {
			reimbursement := byID[id]
			reimbursement.Status = domain.ReimbursementStatusPaid
			reimbursement.PaidAt = &now
			if err := s.Repo.Update(ctx, reimbursement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) requireAdmin(ctx context.Context, callerID uuid.UUID) error {
	caller, err := s.UserRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
