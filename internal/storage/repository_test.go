package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name:     "Test User",
		Email:    email,
		Password: "hashed",
		PhoneNo:  "9999999999",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func seedAccount(t *testing.T, repo *Repository, email, number string, balance decimal.Decimal) core.Account {
	t.Helper()
	bank, err := repo.CreateBank(context.Background(), core.Bank{BankName: "Test Bank"})
	if err != nil {
		t.Fatalf("CreateBank failed: %v", err)
	}
	a, err := repo.CreateAccount(context.Background(), core.Account{
		AccountNumber:  number,
		IFSCCode:       "TEST0001",
		PhoneNo:        "9999999999",
		Email:          email,
		BankID:         bank.ID,
		AccountBalance: balance,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return a
}

func TestUserCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedUser(t, repo, "asha@example.com")
	if created.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	got, err := repo.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "asha@example.com" {
		t.Errorf("expected email asha@example.com, got %s", got.Email)
	}
	if got.OverallBalanceLimit != nil {
		t.Errorf("expected nil overall limit, got %v", got.OverallBalanceLimit)
	}

	limit := decimal.NewFromInt(50000)
	got.OverallBalanceLimit = &limit
	got.Name = "Renamed"
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	updated, err := repo.GetUserByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected name Renamed, got %s", updated.Name)
	}
	if updated.OverallBalanceLimit == nil || !updated.OverallBalanceLimit.Equal(limit) {
		t.Errorf("expected overall limit 50000, got %v", updated.OverallBalanceLimit)
	}

	if err := repo.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := repo.GetUser(ctx, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestAccountBalanceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.RequireFromString("1234.56"))

	got, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !got.AccountBalance.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("expected balance 1234.56, got %s", got.AccountBalance)
	}

	if err := repo.UpdateAccountBalance(ctx, account.ID, decimal.RequireFromString("10.01")); err != nil {
		t.Fatalf("UpdateAccountBalance failed: %v", err)
	}
	got, err = repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !got.AccountBalance.Equal(decimal.RequireFromString("10.01")) {
		t.Errorf("expected balance 10.01, got %s", got.AccountBalance)
	}
}

func TestListAccountsByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)
	seedAccount(t, repo, "asha@example.com", "ACC-2", decimal.Zero)
	seedAccount(t, repo, "other@example.com", "ACC-3", decimal.Zero)

	accounts, err := repo.ListAccountsByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("ListAccountsByEmail failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestTransactionsInWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{
		day.Add(2 * time.Hour),
		day.Add(23 * time.Hour),
		day.Add(25 * time.Hour), // next day, outside the window
	} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			FromAccountID:           account.ID,
			Type:                    core.Debit,
			Amount:                  decimal.NewFromInt(int64(100 + i)),
			Category:                core.Food,
			TransactionDate:         at,
			BalanceAfterTransaction: decimal.Zero,
		})
		if err != nil {
			t.Fatalf("CreateTransaction %d failed: %v", i, err)
		}
	}

	got, err := repo.ListTransactionsInWindow(ctx, account.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListTransactionsInWindow failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions in window, got %d", len(got))
	}
}

func TestListDebitTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := seedAccount(t, repo, "asha@example.com", "ACC-1", decimal.Zero)

	for _, typ := range []core.TransactionType{core.Debit, core.Credit, core.Debit} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			FromAccountID:           account.ID,
			Type:                    typ,
			Amount:                  decimal.NewFromInt(100),
			Category:                core.Food,
			TransactionDate:         time.Now().UTC(),
			BalanceAfterTransaction: decimal.Zero,
		})
		if err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	debits, err := repo.ListDebitTransactions(ctx)
	if err != nil {
		t.Fatalf("ListDebitTransactions failed: %v", err)
	}
	if len(debits) != 2 {
		t.Fatalf("expected 2 debit transactions, got %d", len(debits))
	}
	for i, d := range debits {
		if d.Transaction.Type != core.Debit {
			t.Errorf("row %d: expected DEBIT, got %s", i, d.Transaction.Type)
		}
		if d.AccountEmail != "asha@example.com" {
			t.Errorf("row %d: expected joined email, got %s", i, d.AccountEmail)
		}
	}
}

func TestBudgetSpentUpdateAndReset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com")
	budget, err := repo.CreateBudget(ctx, core.Budget{
		UserID:       user.ID,
		Category:     core.Food,
		MonthlyLimit: decimal.NewFromInt(1000),
		CurrentSpent: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}

	if err := repo.UpdateBudgetSpent(ctx, budget.ID, decimal.RequireFromString("820.50")); err != nil {
		t.Fatalf("UpdateBudgetSpent failed: %v", err)
	}
	got, err := repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.Equal(decimal.RequireFromString("820.50")) {
		t.Errorf("expected spent 820.50, got %s", got.CurrentSpent)
	}

	if err := repo.ResetBudgetSpent(ctx, budget.ID); err != nil {
		t.Fatalf("ResetBudgetSpent failed: %v", err)
	}
	got, err = repo.GetBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("GetBudget failed: %v", err)
	}
	if !got.CurrentSpent.IsZero() {
		t.Errorf("expected zero spent after reset, got %s", got.CurrentSpent)
	}
}

func TestAlertSuppressionQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com")
	budget, err := repo.CreateBudget(ctx, core.Budget{
		UserID:       user.ID,
		Category:     core.Food,
		MonthlyLimit: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}

	exists, err := repo.UnreadAlertExists(ctx, budget.ID, core.AlertBudget80)
	if err != nil {
		t.Fatalf("UnreadAlertExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected no unread alert before creation")
	}

	alert, err := repo.CreateAlert(ctx, core.Alert{
		UserID:   user.ID,
		BudgetID: &budget.ID,
		Kind:     core.AlertBudget80,
		Message:  "Budget warning! FOOD category has reached 82.0% (₹820.00 / ₹1000.00)",
	})
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	exists, err = repo.UnreadAlertExists(ctx, budget.ID, core.AlertBudget80)
	if err != nil {
		t.Fatalf("UnreadAlertExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected unread alert to suppress")
	}

	// A different kind on the same budget is not suppressed.
	exists, err = repo.UnreadAlertExists(ctx, budget.ID, core.AlertBudget100)
	if err != nil {
		t.Fatalf("UnreadAlertExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected no unread alert for a different kind")
	}

	if err := repo.MarkAlertRead(ctx, alert.ID); err != nil {
		t.Fatalf("MarkAlertRead failed: %v", err)
	}
	exists, err = repo.UnreadAlertExists(ctx, budget.ID, core.AlertBudget80)
	if err != nil {
		t.Fatalf("UnreadAlertExists failed: %v", err)
	}
	if exists {
		t.Fatal("read alert should not suppress")
	}
}

func TestMarkAllAlertsRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "asha@example.com")
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateAlert(ctx, core.Alert{
			UserID:  user.ID,
			Kind:    core.AlertOverallLimit,
			Message: "Overall balance limit exceeded! Current balance: ₹52000.00, Limit: ₹50000.00",
		}); err != nil {
			t.Fatalf("CreateAlert %d failed: %v", i, err)
		}
	}

	count, err := repo.MarkAllAlertsRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllAlertsRead failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 marked read, got %d", count)
	}

	unread, err := repo.ListAlertsByUser(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("expected no unread alerts, got %d", len(unread))
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := repo.InTx(ctx, func(q *Queries) error {
		if _, err := q.CreateBank(ctx, core.Bank{BankName: "Ghost Bank"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	banks, err := repo.ListBanks(ctx)
	if err != nil {
		t.Fatalf("ListBanks failed: %v", err)
	}
	if len(banks) != 0 {
		t.Fatalf("expected rollback to discard the bank, got %d rows", len(banks))
	}
}
