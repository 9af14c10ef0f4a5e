package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

func addTransaction(t *testing.T, repo *storage.Repository, accountID int64, typ core.TransactionType, amount string, category core.Category) {
	t.Helper()
	if _, err := repo.CreateTransaction(context.Background(), core.Transaction{
		FromAccountID:           accountID,
		Type:                    typ,
		Amount:                  dec(t, amount),
		Category:                category,
		TransactionDate:         time.Now().UTC(),
		BalanceAfterTransaction: decimal.Zero,
	}); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
}

func TestReconcileRecomputesSpend(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)
	food := seedBudget(t, repo, user.ID, core.Food, 1000)
	travel := seedBudget(t, repo, user.ID, core.Travel, 2000)

	addTransaction(t, repo, account.ID, core.Debit, "300", core.Food)
	addTransaction(t, repo, account.ID, core.Debit, "520", core.Food)
	addTransaction(t, repo, account.ID, core.Debit, "150", core.Travel)
	// Credits never count toward spend.
	addTransaction(t, repo, account.ID, core.Credit, "9999", core.Food)

	if err := NewBudgetReconciler(repo).Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got, err := repo.GetBudget(ctx, food.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.Equal(dec(t, "820")) {
		t.Errorf("food spend = %s, want 820", got.CurrentSpent)
	}

	got, err = repo.GetBudget(ctx, travel.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.Equal(dec(t, "150")) {
		t.Errorf("travel spend = %s, want 150", got.CurrentSpent)
	}
}

func TestReconcileResetsStaleSpend(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)

	// A stale spend value with no backing transactions.
	if err := repo.UpdateBudgetSpent(ctx, budget.ID, dec(t, "700")); err != nil {
		t.Fatalf("UpdateBudgetSpent failed: %v", err)
	}

	if err := NewBudgetReconciler(repo).Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.IsZero() {
		t.Errorf("expected spend reset to zero, got %s", got.CurrentSpent)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)

	addTransaction(t, repo, account.ID, core.Debit, "300", core.Food)

	r := NewBudgetReconciler(repo)
	for i := 0; i < 3; i++ {
		if err := r.Reconcile(ctx); err != nil {
			t.Fatalf("Reconcile run %d failed: %v", i, err)
		}
	}

	got, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.Equal(dec(t, "300")) {
		t.Errorf("spend after repeated runs = %s, want 300", got.CurrentSpent)
	}
}

func TestReconcileSkipsUnmatchedEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)

	// This account's email matches no user; its debits are skipped.
	orphan := seedAccount(t, repo, "stranger@example.com", "ACC-9", decimal.Zero)
	addTransaction(t, repo, orphan.ID, core.Debit, "300", core.Food)

	if err := NewBudgetReconciler(repo).Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.IsZero() {
		t.Errorf("unmatched debit must not count, got spend %s", got.CurrentSpent)
	}
}

func TestReconcileSkipsCategoriesWithoutBudget(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com", nil)
	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)
	budget := seedBudget(t, repo, user.ID, core.Food, 1000)

	addTransaction(t, repo, account.ID, core.Debit, "300", core.Food)
	addTransaction(t, repo, account.ID, core.Debit, "999", core.Health)

	if err := NewBudgetReconciler(repo).Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.Equal(dec(t, "300")) {
		t.Errorf("spend = %s, want 300 (HEALTH has no budget)", got.CurrentSpent)
	}
}
