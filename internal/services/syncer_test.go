package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/bankfeed/memory"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

func newSyncService(repo *storage.Repository, feed bankfeed.Source) *SyncService {
	transactions := NewTransactionService(repo)
	return NewSyncService(repo, feed,
		transactions,
		NewDeduplicator(repo),
		NewBudgetReconciler(repo),
		NewAlertGenerator(repo, nil))
}

func TestFullSyncWorkflowEndToEnd(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", dec(t, "10000"))
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)

	feed := memory.New()
	feed.Seed(account.ID,
		bankfeed.RawRecord{Description: "Zomato order", Amount: dec(t, "500")},
		bankfeed.RawRecord{Description: "Swiggy dinner", Amount: dec(t, "400")},
	)

	svc := newSyncService(repo, feed)
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("FullSyncWorkflow failed: %v", err)
	}

	// Feed records landed as categorized DEBIT transactions.
	txns, err := repo.ListTransactionsByAccount(ctx, account.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByAccount failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	for i, tx := range txns {
		if tx.Type != core.Debit {
			t.Errorf("transaction %d: expected DEBIT, got %s", i, tx.Type)
		}
		if tx.Category != core.Food {
			t.Errorf("transaction %d: expected FOOD, got %s", i, tx.Category)
		}
	}

	// Reconciliation summed both debits, and the 80% threshold alerted.
	gotBudget, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !gotBudget.CurrentSpent.Equal(dec(t, "900")) {
		t.Errorf("budget spend = %s, want 900", gotBudget.CurrentSpent)
	}

	alerts, err := repo.ListAlertsByUser(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != core.AlertBudget80 {
		t.Errorf("expected BUDGET_80_PERCENT, got %s", alerts[0].Kind)
	}
}

func TestFullSyncWorkflowSkipsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", dec(t, "10000"))

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	feed := memory.New()
	feed.Seed(account.ID,
		bankfeed.RawRecord{Description: "Zomato order", Amount: dec(t, "500"), Date: day},
		bankfeed.RawRecord{Description: "Zomato order again", Amount: dec(t, "500"), Date: day.Add(3 * time.Hour)},
	)

	svc := newSyncService(repo, feed)
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("FullSyncWorkflow failed: %v", err)
	}

	txns, err := repo.ListTransactionsByAccount(ctx, account.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByAccount failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected the second record to be skipped, got %d transactions", len(txns))
	}
}

func TestFullSyncWorkflowDrainsFeedOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", dec(t, "10000"))

	feed := memory.New()
	feed.Seed(account.ID, bankfeed.RawRecord{Description: "Zomato order", Amount: dec(t, "500")})

	svc := newSyncService(repo, feed)
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	txns, err := repo.ListTransactionsByAccount(ctx, account.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByAccount failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction after two runs, got %d", len(txns))
	}
}

// failingSource errors on every fetch.
type failingSource struct {
	calls int
}

func (f *failingSource) Fetch(ctx context.Context, _ core.Account) ([]bankfeed.RawRecord, error) {
	f.calls++
	return nil, errors.New("feed unavailable")
}

func TestFullSyncWorkflowRunsLaterStepsAfterFeedFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", dec(t, "10000"))
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)
	addTransaction(t, repo, account.ID, core.Debit, "850", core.Food)

	feed := &failingSource{}
	svc := newSyncService(repo, feed)
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("FullSyncWorkflow failed: %v", err)
	}
	if feed.calls == 0 {
		t.Fatal("feed was never consulted")
	}

	// Reconciliation ran over the existing ledger despite the feed error.
	gotBudget, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !gotBudget.CurrentSpent.Equal(dec(t, "850")) {
		t.Errorf("budget spend = %s, want 850", gotBudget.CurrentSpent)
	}

	// Alert generation ran too.
	alerts, err := repo.ListAlertsByUser(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Kind != core.AlertBudget80 {
		t.Fatalf("expected one BUDGET_80_PERCENT alert, got %v", alerts)
	}
}

// blockingSource parks Fetch until released, to hold a workflow run open.
type blockingSource struct {
	entered  chan struct{}
	release  chan struct{}
	reported bool
}

func (b *blockingSource) Fetch(ctx context.Context, _ core.Account) ([]bankfeed.RawRecord, error) {
	if !b.reported {
		b.reported = true
		close(b.entered)
	}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func TestFullSyncWorkflowOverlapGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)

	feed := &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newSyncService(repo, feed)

	done := make(chan error, 1)
	go func() { done <- svc.FullSyncWorkflow(ctx) }()

	select {
	case <-feed.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("workflow never reached the feed")
	}

	if !svc.IsRunning() {
		t.Error("IsRunning should report the in-flight run")
	}
	if err := svc.FullSyncWorkflow(ctx); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}

	close(feed.release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if svc.IsRunning() {
		t.Error("IsRunning should reset after completion")
	}

	// Guard released: a fresh run is accepted.
	if err := svc.FullSyncWorkflow(ctx); err != nil {
		t.Fatalf("run after release failed: %v", err)
	}
}
