package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
	"github.com/reimx/reimx-backend/internal/usecase/ledger"
)

// AssetHandler serves asset CRUD and the record history endpoints.
type AssetHandler struct {
	Ledger *ledger.Service
}

// NewAssetHandler creates a new AssetHandler instance
func NewAssetHandler(ledgerService *ledger.Service) *AssetHandler {
	return &AssetHandler{Ledger: ledgerService}
}

type createAssetRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Category     string          `json:"category" binding:"max=50"`
	Currency     string          `json:"currency" binding:"required,max=10"`
	InitialValue decimal.Decimal `json:"initial_value"`
	Date         *time.Time      `json:"date"`
	Note         string          `json:"note" binding:"max=255"`
}

type createRecordRequest struct {
	Type   string          `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date" binding:"required"`
	Note   string          `json:"note" binding:"max=255"`
}

type updateRecordRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Date   *time.Time       `json:"date"`
	Note   *string          `json:"note"`
}

type assetResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Currency     string          `json:"currency"`
	InitialValue decimal.Decimal `json:"initial_value"`
	CurrentValue decimal.Decimal `json:"current_value"`
	CreatedAt    time.Time       `json:"created_at"`
}

type recordResponse struct {
	ID           string          `json:"id"`
	AssetID      string          `json:"asset_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	AmountChange decimal.Decimal `json:"amount_change"`
	ValueAfter   decimal.Decimal `json:"value_after"`
	Date         time.Time       `json:"date"`
	Note         string          `json:"note"`
}

func toAssetResponse(a *domain.Asset) assetResponse {
	return assetResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		Category:     a.Category,
		Currency:     a.Currency,
		InitialValue: a.InitialValue,
		CurrentValue: a.CurrentValue,
		CreatedAt:    a.CreatedAt,
	}
}

func toRecordResponse(r *domain.AssetRecord) recordResponse {
	return recordResponse{
		ID:           r.ID.String(),
		AssetID:      r.AssetID.String(),
		Type:         string(r.Type),
		Amount:       r.Amount,
		AmountChange: r.AmountChange,
		ValueAfter:   r.ValueAfter,
		Date:         r.Date,
		Note:         r.Note,
	}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, domain.WrapValidation("malformed id"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateAsset handles POST /api/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	input := ledger.CreateAssetInput{
		Name:         req.Name,
		Category:     req.Category,
		Currency:     req.Currency,
		InitialValue: req.InitialValue,
		Note:         req.Note,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	asset, err := h.Ledger.CreateAsset(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, toAssetResponse(asset))
}

// ListAssets handles GET /api/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	assets, err := h.Ledger.ListAssets(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		responses = append(responses, toAssetResponse(a))
	}
	respondOK(c, responses)
}

// GetAsset handles GET /api/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	asset, err := h.Ledger.GetAsset(c.Request.Context(), currentUserID(c), assetID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toAssetResponse(asset))
}

// DeleteAsset handles DELETE /api/assets/:id
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Ledger.DeleteAsset(c.Request.Context(), currentUserID(c), assetID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": assetID.String()})
}

// ListRecords handles GET /api/assets/:id/records — the chronological history
// feeding the record table and the running-value chart.
func (h *AssetHandler) ListRecords(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	records, err := h.Ledger.ListRecords(c.Request.Context(), currentUserID(c), assetID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]recordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toRecordResponse(r))
	}
	respondOK(c, responses)
}

// CreateRecord handles POST /api/assets/:id/records
func (h *AssetHandler) CreateRecord(c *gin.Context) {
	assetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	record, err := h.Ledger.CreateRecord(c.Request.Context(), currentUserID(c), ledger.CreateRecordInput{
		AssetID: assetID,
		Type:    domain.RecordType(req.Type),
		Amount:  req.Amount,
		Date:    req.Date,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, toRecordResponse(record))
}

// UpdateRecord handles PUT /api/records/:id
func (h *AssetHandler) UpdateRecord(c *gin.Context) {
	recordID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.WrapValidation(err.Error()))
		return
	}

	record, err := h.Ledger.UpdateRecord(c.Request.Context(), currentUserID(c), ledger.UpdateRecordInput{
		RecordID: recordID,
		Amount:   req.Amount,
		Date:     req.Date,
		Note:     req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, toRecordResponse(record))
}

// DeleteRecord handles DELETE /api/records/:id
func (h *AssetHandler) DeleteRecord(c *gin.Context) {
	recordID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Ledger.DeleteRecord(c.Request.Context(), currentUserID(c), recordID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": recordID.String()})
}
