package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type createAccountRequest struct {
	AccountNumber  string          `json:"account_number"`
	IFSCCode       string          `json:"ifsc_code"`
	PhoneNo        string          `json:"phone_no"`
	Email          string          `json:"email"`
	BankID         int64           `json:"bank_id"`
	AccountBalance decimal.Decimal `json:"account_balance"`
}

type accountResponse struct {
	ID             int64           `json:"id"`
	AccountNumber  string          `json:"account_number"`
	IFSCCode       string          `json:"ifsc_code"`
	PhoneNo        string          `json:"phone_no"`
	Email          string          `json:"email"`
	BankID         int64           `json:"bank_id"`
	AccountBalance decimal.Decimal `json:"account_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		IFSCCode:       a.IFSCCode,
		PhoneNo:        a.PhoneNo,
		Email:          a.Email,
		BankID:         a.BankID,
		AccountBalance: a.AccountBalance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account := core.Account{
		AccountNumber:  req.AccountNumber,
		IFSCCode:       req.IFSCCode,
		PhoneNo:        req.PhoneNo,
		Email:          req.Email,
		BankID:         req.BankID,
		AccountBalance: req.AccountBalance,
	}
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetBank(r.Context(), req.BankID); err != nil {
		writeStoreError(w, err, "bank")
		return
	}
	created, err := s.store.CreateAccount(r.Context(), account)
	if err != nil {
		writeStoreError(w, err, "account")
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	if number := r.URL.Query().Get("account_number"); number != "" {
		account, err := s.store.GetAccountByNumber(r.Context(), number)
		if err != nil {
			writeStoreError(w, err, "account")
			return
		}
		writeJSON(w, http.StatusOK, []accountResponse{toAccountResponse(account)})
		return
	}

	var (
		accounts []core.Account
		err      error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		accounts, err = s.store.ListAccountsByEmail(r.Context(), email)
	} else {
		accounts, err = s.store.ListAccounts(r.Context())
	}
	if err != nil {
		writeStoreError(w, err, "account")
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "account")
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		writeStoreError(w, err, "account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetAccount(r.Context(), id); err != nil {
		writeStoreError(w, err, "account")
		return
	}

	limit := queryInt(r, "limit", 50)
	skip := queryInt(r, "skip", 0)

	transactions, err := s.store.ListTransactionsByAccount(r.Context(), id, limit, skip)
	if err != nil {
		writeStoreError(w, err, "transaction")
		return
	}
	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, fallback int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
