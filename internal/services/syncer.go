package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/categorize"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

// ErrSyncInProgress is returned when a workflow invocation overlaps a run
// that has not finished.
var ErrSyncInProgress = errors.New("sync workflow already in progress")

// SyncService runs the full sync workflow: per-account feed sync, then
// budget reconciliation, then alert generation. Each step
// commits its own transaction and logs its own errors; a failing step does
// not stop the following ones. A run-in-progress guard rejects overlapping
// invocations.
type SyncService struct {
	store        *storage.Repository
	feed         bankfeed.Source
	transactions *TransactionService
	dedup        *Deduplicator
	reconciler   *BudgetReconciler
	alerts       *AlertGenerator

	mu      sync.Mutex
	running bool
}

func NewSyncService(
	store *storage.Repository,
	feed bankfeed.Source,
	transactions *TransactionService,
	dedup *Deduplicator,
	reconciler *BudgetReconciler,
	alerts *AlertGenerator,
) *SyncService {
	return &SyncService{
		store:        store,
		feed:         feed,
		transactions: transactions,
		dedup:        dedup,
		reconciler:   reconciler,
		alerts:       alerts,
	}
}

// FullSyncWorkflow is the single entry point invoked by the scheduler and
// the administrative trigger.
func (s *SyncService) FullSyncWorkflow(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	slog.InfoContext(ctx, "Starting full sync workflow")

	if err := s.syncAccounts(ctx); err != nil {
		slog.ErrorContext(ctx, "Account sync step failed", "error", err)
	}

	if err := s.reconciler.Reconcile(ctx); err != nil {
		// The alert step still runs, on whatever spend values are
		// persisted.
		slog.ErrorContext(ctx, "Reconciliation step failed", "error", err)
	}

	if _, err := s.alerts.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "Alert generation step failed", "error", err)
	}

	slog.InfoContext(ctx, "Full sync workflow completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// IsRunning reports whether a workflow run is currently in flight.
func (s *SyncService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// syncAccounts pulls raw feed records for every account and stores the
// ones that survive normalization and deduplication. The default feed
// returns nothing, making this a no-op over existing data.
func (s *SyncService) syncAccounts(ctx context.Context) error {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Syncing accounts", "count", len(accounts))

	stored, skipped := 0, 0
	for _, account := range accounts {
		records, err := s.feed.Fetch(ctx, account)
		if err != nil {
			slog.ErrorContext(ctx, "Feed fetch failed",
				"account_id", account.ID, "error", err)
			continue
		}

		for _, raw := range records {
			candidate := s.normalize(account, raw)

			dup, err := s.dedup.IsDuplicate(ctx, Candidate{
				AccountID: candidate.FromAccountID,
				Amount:    candidate.Amount,
				Category:  candidate.Category,
				Date:      candidate.Date,
			})
			if err != nil {
				slog.ErrorContext(ctx, "Duplicate check failed",
					"account_id", account.ID, "error", err)
				continue
			}
			if dup {
				skipped++
				slog.InfoContext(ctx, "Skipping duplicate feed record",
					"account_id", account.ID,
					"amount", candidate.Amount.String(),
					"fingerprint", s.dedup.Fingerprint(Candidate{
						AccountID: candidate.FromAccountID,
						Amount:    candidate.Amount,
						Category:  candidate.Category,
						Date:      candidate.Date,
					}))
				continue
			}

			if _, err := s.transactions.Create(ctx, candidate); err != nil {
				slog.ErrorContext(ctx, "Failed to store feed record",
					"account_id", account.ID, "error", err)
				continue
			}
			stored++
		}
	}

	slog.InfoContext(ctx, "Account sync completed",
		"accounts", len(accounts), "stored", stored, "duplicates_skipped", skipped)
	return nil
}

// normalize converts a raw feed record to canonical transaction input,
// filling defaults: DEBIT type, keyword-derived category, current time.
func (s *SyncService) normalize(account core.Account, raw bankfeed.RawRecord) CreateTransactionInput {
	in := CreateTransactionInput{
		FromAccountID: account.ID,
		ToAccountID:   raw.ToAccountID,
		Type:          raw.Type,
		Amount:        raw.Amount,
		Category:      raw.Category,
		Date:          raw.Date,
	}
	if in.Type == "" {
		in.Type = core.Debit
	}
	if in.Category == "" {
		in.Category = categorize.Categorize(raw.Description)
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	return in
}
