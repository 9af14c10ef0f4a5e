package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

const createAccount = `
INSERT INTO accounts (account_number, ifsc_code, phone_no, email, bank_id, account_balance, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, createAccount,
		a.AccountNumber, a.IFSCCode, a.PhoneNo, a.Email, a.BankID, a.AccountBalance.String(), now, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account id: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

const selectAccount = `
SELECT id, account_number, ifsc_code, phone_no, email, bank_id, account_balance, created_at, updated_at
FROM accounts
`

func scanAccountRow(scan func(dest ...interface{}) error) (core.Account, error) {
	var a core.Account
	var balance string
	err := scan(&a.ID, &a.AccountNumber, &a.IFSCCode, &a.PhoneNo, &a.Email, &a.BankID, &balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return core.Account{}, err
	}
	if a.AccountBalance, err = decFromString(balance); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return scanAccountRow(q.db.QueryRowContext(ctx, selectAccount+"WHERE id = ?", id).Scan)
}

func (q *Queries) GetAccountByNumber(ctx context.Context, accountNumber string) (core.Account, error) {
	return scanAccountRow(q.db.QueryRowContext(ctx, selectAccount+"WHERE account_number = ?", accountNumber).Scan)
}

func (q *Queries) listAccounts(ctx context.Context, query string, args ...interface{}) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccountRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q *Queries) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return q.listAccounts(ctx, selectAccount+"ORDER BY id")
}

// ListAccountsByEmail resolves the email soft join from user to accounts.
func (q *Queries) ListAccountsByEmail(ctx context.Context, email string) ([]core.Account, error) {
	return q.listAccounts(ctx, selectAccount+"WHERE email = ? ORDER BY id", email)
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE accounts SET account_balance = ?, updated_at = ? WHERE id = ?",
		balance.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update account %d balance: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) DeleteAccount(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
