package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/amqp"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

var hundred = decimal.NewFromInt(100)
var eighty = decimal.NewFromInt(80)

// AlertGenerator evaluates reconciled budgets and cross-account balances
// against thresholds, raising at most one unread alert per (budget, kind)
// and per (user, overall-limit). Created alerts are published to AMQP after
// the step commits; publishing is best-effort and a nil client is fine.
type AlertGenerator struct {
	store      *storage.Repository
	amqpClient *amqp.Client
}

func NewAlertGenerator(store *storage.Repository, amqpClient *amqp.Client) *AlertGenerator {
	return &AlertGenerator{store: store, amqpClient: amqpClient}
}

// Run executes the per-budget threshold check followed by the overall
// balance-limit check in a single database transaction, then fans the new
// alerts out. Idempotent given unchanged data: existing unread alerts
// suppress recreation.
func (g *AlertGenerator) Run(ctx context.Context) ([]core.Alert, error) {
	var created []core.Alert

	err := g.store.InTx(ctx, func(q *storage.Queries) error {
		budgetAlerts, err := g.checkBudgets(ctx, q)
		if err != nil {
			return err
		}
		created = append(created, budgetAlerts...)

		overallAlerts, err := g.checkOverallLimits(ctx, q)
		if err != nil {
			return err
		}
		created = append(created, overallAlerts...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate alerts: %w", err)
	}

	for _, a := range created {
		g.publish(ctx, a)
	}

	slog.InfoContext(ctx, "Alert generation completed", "created", len(created))
	return created, nil
}

// checkBudgets raises threshold alerts for budgets with a positive limit.
// The 100% check takes priority and suppresses the 80% one for the same
// budget within a run.
func (g *AlertGenerator) checkBudgets(ctx context.Context, q *storage.Queries) ([]core.Alert, error) {
	budgets, err := q.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	var created []core.Alert
	for _, b := range budgets {
		if !b.MonthlyLimit.IsPositive() {
			continue
		}

		percentage := b.SpentPercentage()

		var kind core.AlertKind
		var severity string
		switch {
		case percentage.GreaterThanOrEqual(hundred):
			kind = core.AlertBudget100
			severity = "Budget exceeded!"
		case percentage.GreaterThanOrEqual(eighty):
			kind = core.AlertBudget80
			severity = "Budget warning!"
		default:
			continue
		}

		exists, err := q.UnreadAlertExists(ctx, b.ID, kind)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		budgetID := b.ID
		message := fmt.Sprintf("%s %s category has reached %s%% (₹%s / ₹%s)",
			severity, b.Category,
			percentage.StringFixed(1),
			b.CurrentSpent.StringFixed(2),
			b.MonthlyLimit.StringFixed(2))

		alert, err := q.CreateAlert(ctx, core.Alert{
			UserID:   b.UserID,
			BudgetID: &budgetID,
			Kind:     kind,
			Message:  message,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s alert for budget %d: %w", kind, b.ID, err)
		}

		slog.InfoContext(ctx, "Budget threshold alert raised",
			"budget_id", b.ID,
			"user_id", b.UserID,
			"kind", kind,
			"percentage", percentage.StringFixed(1))
		created = append(created, alert)
	}
	return created, nil
}

// checkOverallLimits sums the balances of each user's email-matched
// accounts and raises an overall-limit alert when the total exceeds the
// user's configured ceiling.
func (g *AlertGenerator) checkOverallLimits(ctx context.Context, q *storage.Queries) ([]core.Alert, error) {
	users, err := q.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var created []core.Alert
	for _, u := range users {
		if u.OverallBalanceLimit == nil {
			continue
		}

		accounts, err := q.ListAccountsByEmail(ctx, u.Email)
		if err != nil {
			return nil, fmt.Errorf("list accounts for user %d: %w", u.ID, err)
		}

		total := decimal.Zero
		for _, a := range accounts {
			total = total.Add(a.AccountBalance)
		}

		if !total.GreaterThan(*u.OverallBalanceLimit) {
			continue
		}

		exists, err := q.UnreadOverallAlertExists(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		message := fmt.Sprintf("Overall balance limit exceeded! Current balance: ₹%s, Limit: ₹%s",
			total.StringFixed(2), u.OverallBalanceLimit.StringFixed(2))

		alert, err := q.CreateAlert(ctx, core.Alert{
			UserID:  u.ID,
			Kind:    core.AlertOverallLimit,
			Message: message,
		})
		if err != nil {
			return nil, fmt.Errorf("create overall-limit alert for user %d: %w", u.ID, err)
		}

		slog.InfoContext(ctx, "Overall balance limit alert raised",
			"user_id", u.ID,
			"total", total.StringFixed(2),
			"limit", u.OverallBalanceLimit.StringFixed(2))
		created = append(created, alert)
	}
	return created, nil
}

func (g *AlertGenerator) publish(ctx context.Context, a core.Alert) {
	if g.amqpClient == nil {
		return
	}
	msg := amqp.NewAlertNotificationMessage(a.ID, a.UserID, string(a.Kind), a.Message)
	if err := g.amqpClient.PublishAlertNotification(ctx, msg); err != nil {
		// Delivery is best-effort; the alert row is already committed.
		slog.ErrorContext(ctx, "Failed to publish alert notification",
			"alert_id", a.ID, "user_id", a.UserID, "error", err)
	}
}
