// Package bankfeed defines the port through which the sync workflow pulls
// raw transaction records for an account. A real bank integration would
// implement Source; the default memory implementation is a stub so the
// scheduled sync is a no-op over existing data.
package bankfeed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

// RawRecord is a transaction as delivered by an external feed, before
// normalization. Category and Date may be empty; Type defaults to DEBIT.
type RawRecord struct {
	Description string
	Amount      decimal.Decimal
	Type        core.TransactionType
	Category    core.Category
	Date        time.Time
	ToAccountID *int64
}

// Source fetches the raw records pending for one account.
type Source interface {
	Fetch(ctx context.Context, account core.Account) ([]RawRecord, error)
}
