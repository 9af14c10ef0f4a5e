package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

func (q *Queries) CreateBank(ctx context.Context, b core.Bank) (core.Bank, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO banks (bank_name, created_at, updated_at) VALUES (?, ?, ?)",
		b.BankName, now, now)
	if err != nil {
		return core.Bank{}, fmt.Errorf("create bank: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Bank{}, fmt.Errorf("create bank id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

func (q *Queries) GetBank(ctx context.Context, id int64) (core.Bank, error) {
	var b core.Bank
	err := q.db.QueryRowContext(ctx,
		"SELECT id, bank_name, created_at, updated_at FROM banks WHERE id = ?", id).
		Scan(&b.ID, &b.BankName, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (q *Queries) ListBanks(ctx context.Context) ([]core.Bank, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, bank_name, created_at, updated_at FROM banks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var banks []core.Bank
	for rows.Next() {
		var b core.Bank
		if err := rows.Scan(&b.ID, &b.BankName, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (q *Queries) DeleteBank(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bank %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
