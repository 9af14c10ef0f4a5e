// Package services holds the reconciliation and alerting engine plus the
// transaction-application layer it feeds on.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

var (
	ErrSenderNotFound   = errors.New("sender account not found")
	ErrReceiverNotFound = errors.New("receiver account not found")
)

// CreateTransactionInput is a request to record a transaction and apply its
// balance changes.
type CreateTransactionInput struct {
	FromAccountID int64
	ToAccountID   *int64
	Type          core.TransactionType
	Amount        decimal.Decimal
	Category      core.Category
	Date          time.Time
}

// TransactionService records transactions and applies balance changes.
// CREDIT adds to the source account's balance and DEBIT subtracts from it;
// the destination account, when present, always receives the amount.
type TransactionService struct {
	repo *storage.Repository
}

func NewTransactionService(repo *storage.Repository) *TransactionService {
	return &TransactionService{repo: repo}
}

// Create validates the request, mutates balances and inserts the row, all
// within one database transaction.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (core.Transaction, error) {
	if _, err := core.ParseTransactionType(string(in.Type)); err != nil {
		return core.Transaction{}, err
	}
	if _, err := core.ParseCategory(string(in.Category)); err != nil {
		return core.Transaction{}, err
	}
	if !in.Amount.IsPositive() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}

	var created core.Transaction
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		from, err := q.GetAccount(ctx, in.FromAccountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSenderNotFound
			}
			return fmt.Errorf("get sender account %d: %w", in.FromAccountID, err)
		}

		var to *core.Account
		if in.ToAccountID != nil {
			acc, err := q.GetAccount(ctx, *in.ToAccountID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrReceiverNotFound
				}
				return fmt.Errorf("get receiver account %d: %w", *in.ToAccountID, err)
			}
			to = &acc
		}

		switch in.Type {
		case core.Credit:
			from.AccountBalance = from.AccountBalance.Add(in.Amount)
		case core.Debit:
			from.AccountBalance = from.AccountBalance.Sub(in.Amount)
		}
		if err := q.UpdateAccountBalance(ctx, from.ID, from.AccountBalance); err != nil {
			return fmt.Errorf("apply balance to account %d: %w", from.ID, err)
		}

		if to != nil {
			to.AccountBalance = to.AccountBalance.Add(in.Amount)
			if err := q.UpdateAccountBalance(ctx, to.ID, to.AccountBalance); err != nil {
				return fmt.Errorf("apply balance to account %d: %w", to.ID, err)
			}
		}

		created, err = q.CreateTransaction(ctx, core.Transaction{
			FromAccountID:           in.FromAccountID,
			ToAccountID:             in.ToAccountID,
			Type:                    in.Type,
			Amount:                  in.Amount,
			Category:                in.Category,
			TransactionDate:         in.Date.UTC(),
			BalanceAfterTransaction: from.AccountBalance,
		})
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", created.ID,
		"from_account_id", created.FromAccountID,
		"type", created.Type,
		"amount", created.Amount.String(),
		"category", created.Category)

	return created, nil
}
