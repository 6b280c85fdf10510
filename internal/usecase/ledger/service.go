package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
)

// conflictRetries bounds how many times a mutation is re-run after the
// database reports a serialization failure on the asset row.
const conflictRetries = 3

// CreateAssetInput represents the input for creating an asset
type CreateAssetInput struct {
	Name         string
	Category     string
	Currency     string
	InitialValue decimal.Decimal
	Date         time.Time // valuation date of the synthetic INITIAL record
	Note         string
}

// CreateRecordInput represents the input for logging a transaction
type CreateRecordInput struct {
	AssetID uuid.UUID
	Type    domain.RecordType
	Amount  decimal.Decimal
	Date    time.Time
	Note    string
}

// UpdateRecordInput represents the input for editing a transaction.
// Nil fields are left unchanged. Type is not editable after creation.
type UpdateRecordInput struct {
	RecordID uuid.UUID
	Amount   *decimal.Decimal
	Date     *time.Time
	Note     *string
}

// Service coordinates asset and record mutations. Every mutating operation
// runs as one transaction: row-lock the asset, apply the change, replay the
// full record chain, persist every drifted record plus the asset's new
// current value. Either the whole sequence commits or nothing does.
type Service struct {
	AssetRepo  domain.AssetRepository
	RecordRepo domain.AssetRecordRepository
	Tx         domain.TxManager
}

// NewService creates a new ledger Service instance
func NewService(assetRepo domain.AssetRepository, recordRepo domain.AssetRecordRepository, tx domain.TxManager) *Service {
	return &Service{
		AssetRepo:  assetRepo,
		RecordRepo: recordRepo,
		Tx:         tx,
	}
}

// CreateAsset creates an asset together with its synthetic INITIAL record in
// a single transaction. The INITIAL record anchors the chain: its ValueAfter
// equals the initial value, so the history table always has a record zero.
func (s *Service) CreateAsset(ctx context.Context, userID uuid.UUID, input CreateAssetInput) (*domain.Asset, error) {
	now := time.Now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	asset := &domain.Asset{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         input.Name,
		Category:     input.Category,
		Currency:     input.Currency,
		InitialValue: input.InitialValue,
		CurrentValue: input.InitialValue,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	resolution, err := domain.Resolve(domain.RecordTypeInitial, input.InitialValue, input.InitialValue)
	if err != nil {
		return nil, err
	}

	initialRecord := &domain.AssetRecord{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		UserID:       userID,
		Type:         domain.RecordTypeInitial,
		Amount:       input.InitialValue,
		AmountChange: resolution.AmountChange,
		ValueAfter:   resolution.ValueAfter,
		Date:         date,
		Note:         input.Note,
		CreatedAt:    now,
	}

	err = s.runSerialized(ctx, func(ctx context.Context) error {
		if err := s.AssetRepo.Create(ctx, asset); err != nil {
			return err
		}
		return s.RecordRepo.Create(ctx, initialRecord)
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// CreateRecord logs a transaction against an asset.
// Logic:
//  1. Lock the asset row and verify ownership
//  2. Determine the prior running balance at the new record's chronological
//     position and resolve the record's delta and resulting value
//  3. Persist the new record
//  4. Replay the full chain — an out-of-order insertion may have invalidated
//     every later record's ValueAfter
//  5. Persist drifted records and the asset's recomputed current value
func (s *Service) CreateRecord(ctx context.Context, userID uuid.UUID, input CreateRecordInput) (*domain.AssetRecord, error) {
	if input.Type == domain.RecordTypeInitial {
		return nil, domain.WrapValidation("INITIAL records are created with the asset")
	}

	now := time.Now()
	record := &domain.AssetRecord{
		ID:        uuid.New(),
		AssetID:   input.AssetID,
		Type:      input.Type,
		Amount:    input.Amount,
		Date:      input.Date,
		Note:      input.Note,
		CreatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	err := s.runSerialized(ctx, func(ctx context.Context) error {
		asset, err := s.lockOwnedAsset(ctx, userID, input.AssetID)
		if err != nil {
			return err
		}
		record.UserID = asset.UserID

		records, err := s.RecordRepo.ListByAssetID(ctx, asset.ID)
		if err != nil {
			return err
		}

		resolution, err := domain.Resolve(record.Type, record.Amount, priorValueFor(asset, records, record))
		if err != nil {
			return err
		}
		record.AmountChange = resolution.AmountChange
		record.ValueAfter = resolution.ValueAfter

		if err := s.RecordRepo.Create(ctx, record); err != nil {
			return err
		}

		return s.replayAndPersist(ctx, asset, append(records, record))
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// UpdateRecord edits a transaction's amount, date, or note, then replays the
// chain so this record's position and every subsequent record's chained
// values are recomputed.
func (s *Service) UpdateRecord(ctx context.Context, userID uuid.UUID, input UpdateRecordInput) (*domain.AssetRecord, error) {
	var updated *domain.AssetRecord

	err := s.runSerialized(ctx, func(ctx context.Context) error {
		record, err := s.RecordRepo.GetByID(ctx, input.RecordID)
		if err != nil {
			return err
		}

		asset, err := s.lockOwnedAsset(ctx, userID, record.AssetID)
		if err != nil {
			return err
		}
		if record.Type == domain.RecordTypeInitial {
			return domain.WrapValidation("INITIAL records cannot be edited")
		}

		if input.Amount != nil {
			record.Amount = *input.Amount
		}
		if input.Date != nil {
			record.Date = *input.Date
		}
		if input.Note != nil {
			record.Note = *input.Note
		}
		if err := record.Validate(); err != nil {
			return err
		}

		if err := s.RecordRepo.Update(ctx, record); err != nil {
			return err
		}

		records, err := s.RecordRepo.ListByAssetID(ctx, asset.ID)
		if err != nil {
			return err
		}
		if err := s.replayAndPersist(ctx, asset, records); err != nil {
			return err
		}

		for _, r := range records {
			if r.ID == record.ID {
				updated = r
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRecord removes a transaction and replays the remaining chain, which
// simply closes around the gap.
func (s *Service) DeleteRecord(ctx context.Context, userID uuid.UUID, recordID uuid.UUID) error {
	return s.runSerialized(ctx, func(ctx context.Context) error {
		record, err := s.RecordRepo.GetByID(ctx, recordID)
		if err != nil {
			return err
		}

		asset, err := s.lockOwnedAsset(ctx, userID, record.AssetID)
		if err != nil {
			return err
		}
		if record.Type == domain.RecordTypeInitial {
			return domain.WrapValidation("INITIAL records cannot be deleted")
		}

		if err := s.RecordRepo.Delete(ctx, record.ID); err != nil {
			return err
		}

		records, err := s.RecordRepo.ListByAssetID(ctx, asset.ID)
		if err != nil {
			return err
		}
		return s.replayAndPersist(ctx, asset, records)
	})
}

// DeleteAsset removes an asset and all of its records.
func (s *Service) DeleteAsset(ctx context.Context, userID uuid.UUID, assetID uuid.UUID) error {
	return s.runSerialized(ctx, func(ctx context.Context) error {
		asset, err := s.lockOwnedAsset(ctx, userID, assetID)
		if err != nil {
			return err
		}
		return s.AssetRepo.Delete(ctx, asset.ID)
	})
}

// GetAsset retrieves an asset owned by the caller.
func (s *Service) GetAsset(ctx context.Context, userID uuid.UUID, assetID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !asset.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return asset, nil
}

// ListAssets retrieves all assets owned by the caller.
func (s *Service) ListAssets(ctx context.Context, userID uuid.UUID) ([]*domain.Asset, error) {
	return s.AssetRepo.ListByUserID(ctx, userID)
}

// ListRecords retrieves an asset's full history in chronological order,
// ready for the history table and the running-value chart.
func (s *Service) ListRecords(ctx context.Context, userID uuid.UUID, assetID uuid.UUID) ([]*domain.AssetRecord, error) {
	asset, err := s.GetAsset(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}

	records, err := s.RecordRepo.ListByAssetID(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	domain.SortRecords(records)
	return records, nil
}

// lockOwnedAsset row-locks the asset for the enclosing transaction and
// verifies the caller owns it. Not-found and ownership failures short-circuit
// before any write.
func (s *Service) lockOwnedAsset(ctx context.Context, userID uuid.UUID, assetID uuid.UUID) (*domain.Asset, error) {
	asset, err := s.AssetRepo.GetByIDForUpdate(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !asset.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return asset, nil
}

// replayAndPersist replays the full chain and writes back every drifted
// record plus the asset's recomputed current value.
func (s *Service) replayAndPersist(ctx context.Context, asset *domain.Asset, records []*domain.AssetRecord) error {
	result, err := Replay(asset.InitialValue, records)
	if err != nil {
		return err
	}

	for _, record := range result.Changed {
		if err := s.RecordRepo.Update(ctx, record); err != nil {
			return err
		}
	}

	asset.CurrentValue = result.FinalValue
	return s.AssetRepo.UpdateCurrentValue(ctx, asset.ID, result.FinalValue)
}

// runSerialized executes fn in a transaction, retrying with bounded
// exponential backoff when the database reports a serialization conflict on
// the asset row. Any other failure aborts immediately; the transaction has
// already rolled back.
func (s *Service) runSerialized(ctx context.Context, fn func(ctx context.Context) error) error {
	operation := func() error {
		err := s.Tx.RunInTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), conflictRetries), ctx)
	return backoff.Retry(operation, policy)
}

// priorValueFor determines the running balance immediately before the new
// record's chronological position: the ValueAfter of its predecessor, or the
// initial value when the new record is the earliest.
func priorValueFor(asset *domain.Asset, records []*domain.AssetRecord, newRecord *domain.AssetRecord) decimal.Decimal {
	all := make([]*domain.AssetRecord, 0, len(records)+1)
	all = append(all, records...)
	all = append(all, newRecord)
	domain.SortRecords(all)

	prior := asset.InitialValue
	for _, r := range all {
		if r.ID == newRecord.ID {
			break
		}
		prior = r.ValueAfter
	}
	return prior
}
