package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimx/reimx-backend/internal/domain"
)

// fakeStore is an in-memory implementation of the asset/record repositories
// and the TxManager. RunInTransaction snapshots the maps and restores them
// when fn fails, mirroring the commit-or-rollback contract of the postgres
// adapter. failRecordUpdateAfter injects a persistence fault mid-replay.
type fakeStore struct {
	assets  map[uuid.UUID]domain.Asset
	records map[uuid.UUID]domain.AssetRecord

	recordUpdates         int
	failRecordUpdateAfter int // fail the Nth record update; 0 disables
}

var errInjected = errors.New("injected persistence fault")

func newFakeStore() *fakeStore {
	return &fakeStore{
		assets:  make(map[uuid.UUID]domain.Asset),
		records: make(map[uuid.UUID]domain.AssetRecord),
	}
}

func (s *fakeStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	assetsSnapshot := make(map[uuid.UUID]domain.Asset, len(s.assets))
	for id, a := range s.assets {
		assetsSnapshot[id] = a
	}
	recordsSnapshot := make(map[uuid.UUID]domain.AssetRecord, len(s.records))
	for id, r := range s.records {
		recordsSnapshot[id] = r
	}

	if err := fn(ctx); err != nil {
		s.assets = assetsSnapshot
		s.records = recordsSnapshot
		return err
	}
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	asset, ok := s.assets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := asset
	return &copied, nil
}

func (s *fakeStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Asset, error) {
	var assets []*domain.Asset
	for _, asset := range s.assets {
		if asset.UserID == userID {
			copied := asset
			assets = append(assets, &copied)
		}
	}
	return assets, nil
}

func (s *fakeStore) Create(ctx context.Context, asset *domain.Asset) error {
	s.assets[asset.ID] = *asset
	return nil
}

func (s *fakeStore) UpdateCurrentValue(ctx context.Context, id uuid.UUID, value decimal.Decimal) error {
	asset, ok := s.assets[id]
	if !ok {
		return domain.ErrNotFound
	}
	asset.CurrentValue = value
	s.assets[id] = asset
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.assets, id)
	for recordID, record := range s.records {
		if record.AssetID == id {
			delete(s.records, recordID)
		}
	}
	return nil
}

// recordRepo exposes the fake store as a domain.AssetRecordRepository without
// colliding with the asset repository's method set.
type recordRepo struct{ store *fakeStore }

func (r recordRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AssetRecord, error) {
	record, ok := r.store.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := record
	return &copied, nil
}

func (r recordRepo) ListByAssetID(ctx context.Context, assetID uuid.UUID) ([]*domain.AssetRecord, error) {
	var records []*domain.AssetRecord
	for _, record := range r.store.records {
		if record.AssetID == assetID {
			copied := record
			records = append(records, &copied)
		}
	}
	return records, nil
}

func (r recordRepo) Create(ctx context.Context, record *domain.AssetRecord) error {
	r.store.records[record.ID] = *record
	return nil
}

func (r recordRepo) Update(ctx context.Context, record *domain.AssetRecord) error {
	r.store.recordUpdates++
	if r.store.failRecordUpdateAfter > 0 && r.store.recordUpdates >= r.store.failRecordUpdateAfter {
		return errInjected
	}
	if _, ok := r.store.records[record.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.records[record.ID] = *record
	return nil
}

func (r recordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.records, id)
	return nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, recordRepo{store: store}, store)
}

func mustCreateAsset(t *testing.T, s *Service, userID uuid.UUID, initialValue int64) *domain.Asset {
	t.Helper()
	asset, err := s.CreateAsset(context.Background(), userID, CreateAssetInput{
		Name:         "Cold wallet",
		Category:     "crypto",
		Currency:     "USDT",
		InitialValue: decimal.NewFromInt(initialValue),
		Date:         day(1),
	})
	require.NoError(t, err)
	return asset
}

func TestCreateAsset_WritesInitialRecord(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()

	asset := mustCreateAsset(t, service, userID, 1000)

	stored := store.assets[asset.ID]
	assert.True(t, decimal.NewFromInt(1000).Equal(stored.CurrentValue))

	records, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.RecordTypeInitial, records[0].Type)
	assert.True(t, decimal.NewFromInt(1000).Equal(records[0].ValueAfter))
	assert.True(t, records[0].AmountChange.IsZero())
}

func TestCreateRecord_ConsumptionUpdatesCurrentValue(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	record, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeConsumption,
		Amount:  decimal.NewFromInt(-100),
		Date:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(-100).Equal(record.AmountChange))
	assert.True(t, decimal.NewFromInt(900).Equal(record.ValueAfter))
	assert.True(t, decimal.NewFromInt(900).Equal(store.assets[asset.ID].CurrentValue))
}

func TestCreateRecord_RevaluationDelta(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	record, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeRevaluation,
		Amount:  decimal.NewFromInt(1200),
		Date:    day(2),
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(record.AmountChange))
	assert.True(t, decimal.NewFromInt(1200).Equal(record.ValueAfter))
	assert.True(t, decimal.NewFromInt(1200).Equal(store.assets[asset.ID].CurrentValue))
}

func TestUpdateRecord_OutOfOrderEdit(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	consumption, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeConsumption,
		Amount:  decimal.NewFromInt(-100),
		Date:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(900).Equal(store.assets[asset.ID].CurrentValue))

	// Three newer records exist before the old consumption is corrected.
	for d := 3; d <= 5; d++ {
		_, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
			AssetID: asset.ID,
			Type:    domain.RecordTypeAddition,
			Amount:  decimal.NewFromInt(10),
			Date:    day(d),
		})
		require.NoError(t, err)
	}
	require.True(t, decimal.NewFromInt(930).Equal(store.assets[asset.ID].CurrentValue))

	newAmount := decimal.NewFromInt(-200)
	updated, err := service.UpdateRecord(context.Background(), userID, UpdateRecordInput{
		RecordID: consumption.ID,
		Amount:   &newAmount,
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(800).Equal(updated.ValueAfter))
	assert.True(t, decimal.NewFromInt(830).Equal(store.assets[asset.ID].CurrentValue))

	// Every subsequent record's valueAfter was replayed.
	records, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	expected := []int64{1000, 800, 810, 820, 830}
	require.Len(t, records, len(expected))
	for i, want := range expected {
		assert.Truef(t, decimal.NewFromInt(want).Equal(records[i].ValueAfter),
			"record %d: expected %d, got %s", i, want, records[i].ValueAfter)
	}
}

func TestDeleteRecord_ClosesGap(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	middle, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeConsumption,
		Amount:  decimal.NewFromInt(400),
		Date:    day(2),
	})
	require.NoError(t, err)

	_, err = service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeAddition,
		Amount:  decimal.NewFromInt(50),
		Date:    day(3),
	})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(650).Equal(store.assets[asset.ID].CurrentValue))

	require.NoError(t, service.DeleteRecord(context.Background(), userID, middle.ID))

	records, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, decimal.NewFromInt(1050).Equal(records[1].ValueAfter))
	assert.True(t, decimal.NewFromInt(1050).Equal(store.assets[asset.ID].CurrentValue))
}

func TestCreateRecord_BackdatedBeforeInitial(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	// Dated before the INITIAL record: the INITIAL record re-anchors the
	// chain at the creation-time valuation, so the final value is unchanged.
	_, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeAddition,
		Amount:  decimal.NewFromInt(300),
		Date:    time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	records, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.RecordTypeAddition, records[0].Type)
	assert.True(t, decimal.NewFromInt(1300).Equal(records[0].ValueAfter))
	assert.Equal(t, domain.RecordTypeInitial, records[1].Type)
	assert.True(t, decimal.NewFromInt(1000).Equal(records[1].ValueAfter))
	assert.True(t, decimal.NewFromInt(1000).Equal(store.assets[asset.ID].CurrentValue))
}

func TestMutations_RejectNonOwner(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	owner := uuid.New()
	intruder := uuid.New()
	asset := mustCreateAsset(t, service, owner, 1000)

	recordsBefore := len(store.records)

	_, err := service.CreateRecord(context.Background(), intruder, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeAddition,
		Amount:  decimal.NewFromInt(10),
		Date:    day(2),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = service.DeleteAsset(context.Background(), intruder, asset.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// No writes happened.
	assert.Len(t, store.records, recordsBefore)
	assert.True(t, decimal.NewFromInt(1000).Equal(store.assets[asset.ID].CurrentValue))
}

func TestUpdateRecord_InitialIsImmutable(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	records, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	initialRecord := records[0]

	amount := decimal.NewFromInt(5000)
	_, err = service.UpdateRecord(context.Background(), userID, UpdateRecordInput{
		RecordID: initialRecord.ID,
		Amount:   &amount,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = service.DeleteRecord(context.Background(), userID, initialRecord.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateRecord_FaultMidReplayRollsBackEverything(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)
	userID := uuid.New()
	asset := mustCreateAsset(t, service, userID, 1000)

	consumption, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
		AssetID: asset.ID,
		Type:    domain.RecordTypeConsumption,
		Amount:  decimal.NewFromInt(100),
		Date:    day(2),
	})
	require.NoError(t, err)
	for d := 3; d <= 4; d++ {
		_, err := service.CreateRecord(context.Background(), userID, CreateRecordInput{
			AssetID: asset.ID,
			Type:    domain.RecordTypeAddition,
			Amount:  decimal.NewFromInt(10),
			Date:    day(d),
		})
		require.NoError(t, err)
	}

	recordsBefore, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	valueBefore := store.assets[asset.ID].CurrentValue

	// Fail on the second record write of the replay: the edited record and
	// one successor are updated, then persistence drops.
	store.recordUpdates = 0
	store.failRecordUpdateAfter = 2

	newAmount := decimal.NewFromInt(-500)
	_, err = service.UpdateRecord(context.Background(), userID, UpdateRecordInput{
		RecordID: consumption.ID,
		Amount:   &newAmount,
	})
	require.ErrorIs(t, err, errInjected)

	// Re-read shows the pre-mutation state, bit for bit.
	store.failRecordUpdateAfter = 0
	recordsAfter, err := service.ListRecords(context.Background(), userID, asset.ID)
	require.NoError(t, err)
	require.Equal(t, len(recordsBefore), len(recordsAfter))
	for i := range recordsBefore {
		assert.Equal(t, recordsBefore[i].ID, recordsAfter[i].ID)
		assert.True(t, recordsBefore[i].Amount.Equal(recordsAfter[i].Amount))
		assert.True(t, recordsBefore[i].AmountChange.Equal(recordsAfter[i].AmountChange))
		assert.True(t, recordsBefore[i].ValueAfter.Equal(recordsAfter[i].ValueAfter))
	}
	assert.True(t, valueBefore.Equal(store.assets[asset.ID].CurrentValue))
}

func TestCreateRecord_UnknownAsset(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	_, err := service.CreateRecord(context.Background(), uuid.New(), CreateRecordInput{
		AssetID: uuid.New(),
		Type:    domain.RecordTypeAddition,
		Amount:  decimal.NewFromInt(10),
		Date:    day(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
