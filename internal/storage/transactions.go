package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

const createTransaction = `
INSERT INTO transactions (from_account_id, to_account_id, transaction_type, amount, category,
                          transaction_date, balance_after_transaction, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, createTransaction,
		t.FromAccountID, nullInt64(t.ToAccountID), string(t.Type), t.Amount.String(), string(t.Category),
		t.TransactionDate.UTC(), t.BalanceAfterTransaction.String(), now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

const selectTransaction = `
SELECT id, from_account_id, to_account_id, transaction_type, amount, category,
       transaction_date, balance_after_transaction, created_at, updated_at
FROM transactions
`

func scanTransactionRow(scan func(dest ...interface{}) error) (core.Transaction, error) {
	var t core.Transaction
	var toID sql.NullInt64
	var txType, amount, category, balanceAfter string
	err := scan(&t.ID, &t.FromAccountID, &toID, &txType, &amount, &category,
		&t.TransactionDate, &balanceAfter, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ToAccountID = nullInt64Ptr(toID)
	t.Type = core.TransactionType(txType)
	t.Category = core.Category(category)
	if t.Amount, err = decFromString(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.BalanceAfterTransaction, err = decFromString(balanceAfter); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransactionRow(q.db.QueryRowContext(ctx, selectTransaction+"WHERE id = ?", id).Scan)
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...interface{}) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (q *Queries) ListTransactionsByAccount(ctx context.Context, accountID int64, limit, skip int64) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		selectTransaction+"WHERE from_account_id = ? ORDER BY transaction_date DESC LIMIT ? OFFSET ?",
		accountID, limit, skip)
}

// ListTransactionsInWindow returns transactions for one source account whose
// date falls within [from, to). Used by the deduplicator's same-day check.
func (q *Queries) ListTransactionsInWindow(ctx context.Context, accountID int64, from, to time.Time) ([]core.Transaction, error) {
	return q.listTransactions(ctx,
		selectTransaction+"WHERE from_account_id = ? AND transaction_date >= ? AND transaction_date < ?",
		accountID, from.UTC(), to.UTC())
}

// DebitTransaction pairs a DEBIT transaction with its source account's
// contact email, which reconciliation soft-joins to a user.
type DebitTransaction struct {
	Transaction  core.Transaction
	AccountEmail string
}

const selectDebitTransactions = `
SELECT t.id, t.from_account_id, t.to_account_id, t.transaction_type, t.amount, t.category,
       t.transaction_date, t.balance_after_transaction, t.created_at, t.updated_at,
       a.email
FROM transactions t
JOIN accounts a ON a.id = t.from_account_id
WHERE t.transaction_type = 'DEBIT'
ORDER BY t.id
`

// ListDebitTransactions streams every DEBIT transaction once, in a single
// pass, joined with the owning account's email.
func (q *Queries) ListDebitTransactions(ctx context.Context) ([]DebitTransaction, error) {
	rows, err := q.db.QueryContext(ctx, selectDebitTransactions)
	if err != nil {
		return nil, fmt.Errorf("list debit transactions: %w", err)
	}
	defer rows.Close()

	var debits []DebitTransaction
	for rows.Next() {
		var d DebitTransaction
		var toID sql.NullInt64
		var txType, amount, category, balanceAfter string
		t := &d.Transaction
		err := rows.Scan(&t.ID, &t.FromAccountID, &toID, &txType, &amount, &category,
			&t.TransactionDate, &balanceAfter, &t.CreatedAt, &t.UpdatedAt, &d.AccountEmail)
		if err != nil {
			return nil, fmt.Errorf("scan debit transaction: %w", err)
		}
		t.ToAccountID = nullInt64Ptr(toID)
		t.Type = core.TransactionType(txType)
		t.Category = core.Category(category)
		if t.Amount, err = decFromString(amount); err != nil {
			return nil, err
		}
		if t.BalanceAfterTransaction, err = decFromString(balanceAfter); err != nil {
			return nil, err
		}
		debits = append(debits, d)
	}
	return debits, rows.Err()
}
