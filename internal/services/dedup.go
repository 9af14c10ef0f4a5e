package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

// Candidate is an incoming transaction record checked for duplication
// before it is stored.
type Candidate struct {
	AccountID int64
	Amount    decimal.Decimal
	Category  core.Category
	Date      time.Time
}

// Deduplicator decides whether a candidate duplicates a stored transaction.
// The match key is (account, amount, calendar day in UTC), so two genuinely
// distinct equal-amount transactions on the same day collide. The content
// fingerprint is logged for diagnosis and not used for matching.
type Deduplicator struct {
	store *storage.Repository
}

func NewDeduplicator(store *storage.Repository) *Deduplicator {
	return &Deduplicator{store: store}
}

// Fingerprint returns a SHA-256 content hash of the candidate.
func (d *Deduplicator) Fingerprint(c Candidate) string {
	payload := fmt.Sprintf("%d_%s_%s_%s",
		c.AccountID, c.Amount.String(), c.Date.UTC().Format(time.RFC3339), c.Category)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// IsDuplicate reports whether a stored transaction for the same account and
// amount falls within [midnight, next midnight) of the candidate's day.
// Read-only; never mutates state.
func (d *Deduplicator) IsDuplicate(ctx context.Context, c Candidate) (bool, error) {
	dayStart, dayEnd := dayWindow(c.Date)

	existing, err := d.store.ListTransactionsInWindow(ctx, c.AccountID, dayStart, dayEnd)
	if err != nil {
		return false, fmt.Errorf("query window for account %d: %w", c.AccountID, err)
	}

	for _, tx := range existing {
		if tx.Amount.Equal(c.Amount) {
			return true, nil
		}
	}
	return false, nil
}

// dayWindow normalizes a timestamp to its UTC calendar day boundaries.
func dayWindow(t time.Time) (start, end time.Time) {
	u := t.UTC()
	start = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
