package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

const createBudget = `
INSERT INTO budgets (user_id, category, monthly_limit, current_spent, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, createBudget,
		b.UserID, string(b.Category), b.MonthlyLimit.String(), b.CurrentSpent.String(), now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

const selectBudget = `
SELECT id, user_id, category, monthly_limit, current_spent, created_at, updated_at
FROM budgets
`

func scanBudgetRow(scan func(dest ...interface{}) error) (core.Budget, error) {
	var b core.Budget
	var category, limit, spent string
	err := scan(&b.ID, &b.UserID, &category, &limit, &spent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	b.Category = core.Category(category)
	if b.MonthlyLimit, err = decFromString(limit); err != nil {
		return core.Budget{}, err
	}
	if b.CurrentSpent, err = decFromString(spent); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return scanBudgetRow(q.db.QueryRowContext(ctx, selectBudget+"WHERE id = ?", id).Scan)
}

func (q *Queries) listBudgets(ctx context.Context, query string, args ...interface{}) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudgetRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return q.listBudgets(ctx, selectBudget+"ORDER BY id")
}

func (q *Queries) ListBudgetsByUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	return q.listBudgets(ctx, selectBudget+"WHERE user_id = ? ORDER BY id", userID)
}

// UpdateBudgetSpent persists a recomputed current_spent value.
func (q *Queries) UpdateBudgetSpent(ctx context.Context, id int64, spent decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE budgets SET current_spent = ?, updated_at = ? WHERE id = ?",
		spent.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update budget %d spent: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResetBudgetSpent is the manual monthly reset.
func (q *Queries) ResetBudgetSpent(ctx context.Context, id int64) error {
	return q.UpdateBudgetSpent(ctx, id, decimal.Zero)
}

func (q *Queries) DeleteBudget(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
