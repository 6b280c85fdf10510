package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
	"github.com/reimx/reimx-backend/internal/usecase/payout"
	"github.com/reimx/reimx-backend/internal/usecase/reimbursement"
)

// ReimbursementHandler serves submission, review, and Safe-Wallet export.
type ReimbursementHandler struct {
	Reimbursements *reimbursement.Service
	ChainID        string
}

// NewReimbursementHandler creates a new ReimbursementHandler instance
func NewReimbursementHandler(service *reimbursement.Service, chainID string) *ReimbursementHandler {
	return &ReimbursementHandler{Reimbursements: service, ChainID: chainID}
}

type submitReimbursementRequest struct {
	Kind          string          `json:"kind" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" binding:"required,max=10"`
	WalletAddress string          `json:"wallet_address" binding:"max=100"`
	Description   string          `json:"description" binding:"max=255"`
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

type exportBatchRequest struct {
	Currency string     `json:"currency" binding:"required,max=10"`
	Kind     string     `json:"kind"`
	From     *time.Time `json:"from"`
	To       *time.Time `json:"to"`
	MarkPaid bool       `json:"mark_paid"`
}

type reimbursementResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	WalletAddress string          `json:"wallet_address"`
	Description   string          `json:"description"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

func toReimbursementResponse(r *domain.Reimbursement) reimbursementResponse {
	return reimbursementResponse{
		ID:            r.ID.String(),
		Kind:          string(r.Kind),
		Status:        string(r.Status),
		Amount:        r.Amount,
		Currency:      r.Currency,
		WalletAddress: r.WalletAddress,
		Description:   r.Description,
		SubmittedAt:   r.SubmittedAt,
		ReviewedAt:    r.ReviewedAt,
		PaidAt:        r.PaidAt,
	}
}

// Submit handles POST /api/reimbursements
func (h *ReimbursementHandler) Submit(c *gin.Context) {
	var req submitReimbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	submitted, err := h.Reimbursements.Submit(c.Request.Context(), currentUserID(c), reimbursement.SubmitInput{
		Kind:          domain.ReimbursementKind(req.Kind),
		Amount:        req.Amount,
		Currency:      req.Currency,
		WalletAddress: req.WalletAddress,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, toReimbursementResponse(submitted))
}

// ListMine handles GET /api/reimbursements
func (h *ReimbursementHandler) ListMine(c *gin.Context) {
	reimbursements, err := h.Reimbursements.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toReimbursementResponses(reimbursements))
}

// ListByStatus handles GET /api/admin/reimbursements?status=PENDING
func (h *ReimbursementHandler) ListByStatus(c *gin.Context) {
	status := domain.ReimbursementStatus(c.DefaultQuery("status", string(domain.ReimbursementStatusPending)))

	reimbursements, err := h.Reimbursements.ListByStatus(c.Request.Context(), currentUserID(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toReimbursementResponses(reimbursements))
}

// Review handles POST /api/admin/reimbursements/:id/review
func (h *ReimbursementHandler) Review(c *gin.Context) {
	reimbursementID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	reviewed, err := h.Reimbursements.Review(c.Request.Context(), currentUserID(c), reimbursement.ReviewInput{
		ReimbursementID: reimbursementID,
		Approve:         req.Approve,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toReimbursementResponse(reviewed))
}

// ExportBatch handles POST /api/admin/payouts/export
func (h *ReimbursementHandler) ExportBatch(c *gin.Context) {
	var req exportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	filter := payout.Filter{
		Currency: req.Currency,
		Kind:     domain.ReimbursementKind(req.Kind),
	}
	if req.From != nil {
		filter.From = *req.From
	}
	if req.To != nil {
		filter.To = *req.To
	}

	batch, err := h.Reimbursements.ExportBatch(c.Request.Context(), currentUserID(c), reimbursement.ExportInput{
		ChainID:  h.ChainID,
		Filter:   filter,
		MarkPaid: req.MarkPaid,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batch)
}

func toReimbursementResponses(reimbursements []*domain.Reimbursement) []reimbursementResponse {
	responses := make([]reimbursementResponse, 0, len(reimbursements))
	for _, r := range reimbursements {
		responses = append(responses, toReimbursementResponse(r))
	}
	return responses
}
