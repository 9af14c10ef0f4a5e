package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *storage.Repository, email string, overallLimit *decimal.Decimal) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name:                "Test User",
		Email:               email,
		Password:            "hashed",
		PhoneNo:             "9999999999",
		OverallBalanceLimit: overallLimit,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func seedAccount(t *testing.T, repo *storage.Repository, email, number string, balance decimal.Decimal) core.Account {
	t.Helper()
	ctx := context.Background()
	bank, err := repo.CreateBank(ctx, core.Bank{BankName: "Test Bank"})
	if err != nil {
		t.Fatalf("CreateBank failed: %v", err)
	}
	a, err := repo.CreateAccount(ctx, core.Account{
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

func seedBudget(t *testing.T, repo *storage.Repository, userID int64, category core.Category, limit int64) core.Budget {
	t.Helper()
	b, err := repo.CreateBudget(context.Background(), core.Budget{
		UserID:       userID,
		Category:     category,
		MonthlyLimit: decimal.NewFromInt(limit),
		CurrentSpent: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}
	return b
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
