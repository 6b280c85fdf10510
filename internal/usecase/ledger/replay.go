package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
)

// ReplayResult is the outcome of recomputing an asset's record chain.
type ReplayResult struct {
	// FinalValue is the running balance after the last record, or the
	// asset's initial value when the chain is empty. It becomes the asset's
	// CurrentValue.
	FinalValue decimal.Decimal

	// Changed holds the records whose stored AmountChange or ValueAfter
	// drifted from the recomputed chain. They have already been mutated in
	// place; the caller persists them.
	Changed []*domain.AssetRecord
}

// Replay walks an asset's full record list in chronological order and
// recomputes every record's AmountChange and ValueAfter from its stored user
// intent, starting the running balance at initialValue.
//
// Records are sorted with domain.SortRecords, so the walk order is stable and
// reproducible across invocations. Replay is pure recomputation: it performs
// no I/O and is idempotent — running it twice on an already-consistent chain
// reports no changes. The records slice itself is not reordered; only the
// drifted records are mutated.
//
// Logic:
//  1. Sort a copy of the records chronologically (date, createdAt, id)
//  2. Initialize runningValue = initialValue
//  3. Resolve each record against runningValue; rewrite it if its stored
//     derived values differ; advance runningValue
//  4. Return the final running value and the set of rewritten records
func Replay(initialValue decimal.Decimal, records []*domain.AssetRecord) (*ReplayResult, error) {
	sorted := make([]*domain.AssetRecord, len(records))
	copy(sorted, records)
	domain.SortRecords(sorted)

	running := initialValue
	var changed []*domain.AssetRecord

	for _, record := range sorted {
		resolution, err := domain.Resolve(record.Type, record.Amount, running)
		if err != nil {
			return nil, err
		}

		if !record.AmountChange.Equal(resolution.AmountChange) || !record.ValueAfter.Equal(resolution.ValueAfter) {
			record.AmountChange = resolution.AmountChange
			record.ValueAfter = resolution.ValueAfter
			changed = append(changed, record)
		}

		running = resolution.ValueAfter
	}

	return &ReplayResult{FinalValue: running, Changed: changed}, nil
}
