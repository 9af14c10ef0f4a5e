package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

const createAlert = `
INSERT INTO alerts (user_id, budget_id, alert_type, message, is_read, created_at)
VALUES (?, ?, ?, ?, 0, ?)
`

func (q *Queries) CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, createAlert,
		a.UserID, nullInt64(a.BudgetID), string(a.Kind), a.Message, now)
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Alert{}, fmt.Errorf("create alert id: %w", err)
	}
	a.ID = id
	a.IsRead = false
	a.CreatedAt = now
	return a, nil
}

const selectAlert = `
SELECT id, user_id, budget_id, alert_type, message, is_read, created_at
FROM alerts
`

func scanAlertRow(scan func(dest ...interface{}) error) (core.Alert, error) {
	var a core.Alert
	var budgetID sql.NullInt64
	var kind string
	var isRead int64
	err := scan(&a.ID, &a.UserID, &budgetID, &kind, &a.Message, &isRead, &a.CreatedAt)
	if err != nil {
		return core.Alert{}, err
	}
	a.BudgetID = nullInt64Ptr(budgetID)
	a.Kind = core.AlertKind(kind)
	a.IsRead = isRead != 0
	return a, nil
}

func (q *Queries) GetAlert(ctx context.Context, id int64) (core.Alert, error) {
	return scanAlertRow(q.db.QueryRowContext(ctx, selectAlert+"WHERE id = ?", id).Scan)
}

func (q *Queries) ListAlertsByUser(ctx context.Context, userID int64, unreadOnly bool) ([]core.Alert, error) {
	query := selectAlert + "WHERE user_id = ?"
	if unreadOnly {
		query += " AND is_read = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		a, err := scanAlertRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// UnreadAlertExists reports whether an unread alert of the given kind is
// already open for the budget. This backs the suppression rule: at most one
// unread alert per (budget, kind).
func (q *Queries) UnreadAlertExists(ctx context.Context, budgetID int64, kind core.AlertKind) (bool, error) {
	var one int64
	err := q.db.QueryRowContext(ctx,
		"SELECT 1 FROM alerts WHERE budget_id = ? AND alert_type = ? AND is_read = 0 LIMIT 1",
		budgetID, string(kind)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check unread alert for budget %d: %w", budgetID, err)
	}
	return true, nil
}

// UnreadOverallAlertExists reports whether an unread overall-limit alert is
// already open for the user.
func (q *Queries) UnreadOverallAlertExists(ctx context.Context, userID int64) (bool, error) {
	var one int64
	err := q.db.QueryRowContext(ctx,
		"SELECT 1 FROM alerts WHERE user_id = ? AND alert_type = ? AND is_read = 0 LIMIT 1",
		userID, string(core.AlertOverallLimit)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check unread overall alert for user %d: %w", userID, err)
	}
	return true, nil
}

// MarkAlertRead is the user acknowledgment that makes an alert terminal.
func (q *Queries) MarkAlertRead(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "UPDATE alerts SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark alert %d read: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) MarkAllAlertsRead(ctx context.Context, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE alerts SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read for user %d: %w", userID, err)
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteAlert(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM alerts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete alert %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
