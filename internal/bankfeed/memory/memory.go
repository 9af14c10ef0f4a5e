// Package memory is an in-process bankfeed.Source. Empty by default, it
// stands in for an external bank API; tests seed it with records.
package memory

import (
	"context"
	"sync"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type Source struct {
	mu      sync.Mutex
	records map[int64][]bankfeed.RawRecord // keyed by account ID
}

func New() *Source {
	return &Source{records: make(map[int64][]bankfeed.RawRecord)}
}

// Seed queues records for an account. Each record is delivered once.
func (s *Source) Seed(accountID int64, records ...bankfeed.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[accountID] = append(s.records[accountID], records...)
}

// Fetch drains and returns the queued records for the account.
func (s *Source) Fetch(_ context.Context, account core.Account) ([]bankfeed.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.records[account.ID]
	delete(s.records, account.ID)
	return records, nil
}
