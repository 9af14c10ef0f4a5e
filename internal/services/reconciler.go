package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

// BudgetReconciler recomputes every budget's current_spent from the full
// DEBIT transaction history. Full recomputation (not incremental) tolerates
// out-of-order and backfilled inserts at O(transactions) per run.
type BudgetReconciler struct {
	store *storage.Repository
}

func NewBudgetReconciler(store *storage.Repository) *BudgetReconciler {
	return &BudgetReconciler{store: store}
}

type budgetKey struct {
	userID   int64
	category core.Category
}

// Reconcile resets every budget's spend to zero, streams all DEBIT
// transactions once, resolves each transaction's account email to a user
// and the (user, category) pair to a budget, and persists the accumulated
// totals. The whole pass runs in one database transaction: any error rolls
// back every budget update.
func (r *BudgetReconciler) Reconcile(ctx context.Context) error {
	err := r.store.InTx(ctx, func(q *storage.Queries) error {
		budgets, err := q.ListBudgets(ctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}

		users, err := q.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		userByEmail := make(map[string]int64, len(users))
		for _, u := range users {
			userByEmail[u.Email] = u.ID
		}

		budgetByKey := make(map[budgetKey]int64, len(budgets))
		totals := make(map[int64]decimal.Decimal, len(budgets))
		for _, b := range budgets {
			budgetByKey[budgetKey{b.UserID, b.Category}] = b.ID
			totals[b.ID] = decimal.Zero
		}

		debits, err := q.ListDebitTransactions(ctx)
		if err != nil {
			return fmt.Errorf("list debit transactions: %w", err)
		}

		for _, d := range debits {
			userID, ok := userByEmail[d.AccountEmail]
			if !ok {
				// Account email matches no user: the soft join misses.
				slog.DebugContext(ctx, "Debit transaction has no owning user",
					"transaction_id", d.Transaction.ID,
					"account_id", d.Transaction.FromAccountID)
				continue
			}
			budgetID, ok := budgetByKey[budgetKey{userID, d.Transaction.Category}]
			if !ok {
				continue
			}
			totals[budgetID] = totals[budgetID].Add(d.Transaction.Amount)
		}

		// Persist every budget, including those reset to zero.
		for _, b := range budgets {
			if err := q.UpdateBudgetSpent(ctx, b.ID, totals[b.ID]); err != nil {
				return fmt.Errorf("persist budget %d spend: %w", b.ID, err)
			}
		}

		slog.InfoContext(ctx, "Budget reconciliation completed",
			"budgets", len(budgets),
			"debit_transactions", len(debits))
		return nil
	})
	if err != nil {
		return fmt.Errorf("reconcile budgets: %w", err)
	}
	return nil
}
