// Package payout aggregates approved reimbursements into Safe-Wallet batch
// payout files: filter, deduplicate, group by recipient, sum. It is pure —
// persistence of the PAID transition happens elsewhere, keyed on the record
// ids a batch reports as covered.
package payout

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reimx/reimx-backend/internal/domain"
)

// Filter selects which approved reimbursements enter a batch. Currency is
// required; the zero values of the other fields disable their criterion.
type Filter struct {
	Currency string
	Kind     domain.ReimbursementKind
	From     time.Time // submission window start, inclusive
	To       time.Time // submission window end, exclusive
}

// Transaction is one payout in a Safe transaction-builder batch: the summed
// amount owed to a single recipient wallet.
type Transaction struct {
	To    string          `json:"to"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"` // reimbursements folded into this payout
}

// Batch is a Safe-Wallet transaction-builder export plus the ids of the
// reimbursements it covers, so the caller can mark exactly those records PAID
// once the batch executes.
type Batch struct {
	Version      string          `json:"version"`
	ChainID      string          `json:"chainId"`
	CreatedAt    time.Time       `json:"createdAt"`
	Currency     string          `json:"currency"`
	Transactions []Transaction   `json:"transactions"`
	CoveredIDs   []uuid.UUID     `json:"coveredIds"`
	Total        decimal.Decimal `json:"total"`
}

// batchVersion is the Safe transaction-builder schema version we emit.
const batchVersion = "1.0"

// Build aggregates the given reimbursements into a payout batch.
// Logic:
//  1. Keep only APPROVED records matching the filter's currency, kind, and
//     submission window
//  2. Deduplicate by record id (the caller may hand us overlapping listings)
//  3. Group by recipient wallet address and sum the amounts
//  4. Emit one transaction per recipient, ordered by wallet address so the
//     export is reproducible
func Build(reimbursements []*domain.Reimbursement, chainID string, filter Filter) (*Batch, error) {
	if filter.Currency == "" {
		return nil, domain.WrapValidation("payout batch currency is required")
	}

	seen := make(map[uuid.UUID]bool)
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	var covered []uuid.UUID
	total := decimal.Zero

	for _, r := range reimbursements {
		if !matches(r, filter) || seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		sums[r.WalletAddress] = sums[r.WalletAddress].Add(r.Amount)
		counts[r.WalletAddress]++
		covered = append(covered, r.ID)
		total = total.Add(r.Amount)
	}

	wallets := make([]string, 0, len(sums))
	for wallet := range sums {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)

	transactions := make([]Transaction, 0, len(wallets))
	for _, wallet := range wallets {
		transactions = append(transactions, Transaction{
			To:    wallet,
			Value: sums[wallet],
			Count: counts[wallet],
		})
	}

	sort.Slice(covered, func(i, j int) bool {
		return covered[i].String() < covered[j].String()
	})

	return &Batch{
		Version:      batchVersion,
		ChainID:      chainID,
		CreatedAt:    time.Now(),
		Currency:     filter.Currency,
		Transactions: transactions,
		CoveredIDs:   covered,
		Total:        total,
	}, nil
}

func matches(r *domain.Reimbursement, filter Filter) bool {
	if r.Status != domain.ReimbursementStatusApproved {
		return false
	}
	if r.Currency != filter.Currency {
		return false
	}
	if filter.Kind != "" && r.Kind != filter.Kind {
		return false
	}
	if !filter.From.IsZero() && r.SubmittedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !r.SubmittedAt.Before(filter.To) {
		return false
	}
	return true
}
