package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

const createUser = `
INSERT INTO users (name, email, password, phone_no, overall_balance_limit, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, createUser,
		u.Name, u.Email, u.Password, u.PhoneNo, nullDecToString(u.OverallBalanceLimit), now, now)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

const selectUser = `
SELECT id, name, email, password, phone_no, overall_balance_limit, created_at, updated_at
FROM users
`

func scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var limit sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.PhoneNo, &limit, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return core.User{}, err
	}
	u.OverallBalanceLimit, err = nullDecFromString(limit)
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, selectUser+"WHERE id = ?", id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, selectUser+"WHERE email = ?", email))
}

func (q *Queries) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := q.db.QueryContext(ctx, selectUser+"ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		var limit sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.PhoneNo, &limit, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.OverallBalanceLimit, err = nullDecFromString(limit); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUser = `
UPDATE users
SET name = ?, email = ?, phone_no = ?, overall_balance_limit = ?, updated_at = ?
WHERE id = ?
`

func (q *Queries) UpdateUser(ctx context.Context, u core.User) error {
	res, err := q.db.ExecContext(ctx, updateUser,
		u.Name, u.Email, u.PhoneNo, nullDecToString(u.OverallBalanceLimit), time.Now().UTC(), u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, hashed string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET password = ?, updated_at = ? WHERE id = ?", hashed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user %d password: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
