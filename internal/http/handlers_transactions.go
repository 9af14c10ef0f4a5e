package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/services"
)

type createTransactionRequest struct {
	FromAccountID   int64           `json:"from_account_id"`
	ToAccountID     *int64          `json:"to_account_id,omitempty"`
	Type            string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
}

type transactionResponse struct {
	ID                      int64           `json:"id"`
	FromAccountID           int64           `json:"from_account_id"`
	ToAccountID             *int64          `json:"to_account_id,omitempty"`
	Type                    string          `json:"transaction_type"`
	Amount                  decimal.Decimal `json:"amount"`
	Category                string          `json:"category"`
	TransactionDate         time.Time       `json:"transaction_date"`
	BalanceAfterTransaction decimal.Decimal `json:"balance_after_transaction"`
	CreatedAt               time.Time       `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                      t.ID,
		FromAccountID:           t.FromAccountID,
		ToAccountID:             t.ToAccountID,
		Type:                    string(t.Type),
		Amount:                  t.Amount,
		Category:                string(t.Category),
		TransactionDate:         t.TransactionDate,
		BalanceAfterTransaction: t.BalanceAfterTransaction,
		CreatedAt:               t.CreatedAt,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := services.CreateTransactionInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Type:          core.TransactionType(req.Type),
		Amount:        req.Amount,
		Category:      core.Category(req.Category),
	}
	if req.TransactionDate != nil {
		in.Date = *req.TransactionDate
	}

	created, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSenderNotFound),
			errors.Is(err, services.ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeStoreError(w, err, "transaction")
		}
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "transaction")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}
