package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type createBudgetRequest struct {
	UserID       int64           `json:"user_id"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}

type budgetResponse struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Category        string          `json:"category"`
	MonthlyLimit    decimal.Decimal `json:"monthly_limit"`
	CurrentSpent    decimal.Decimal `json:"current_spent"`
	SpentPercentage decimal.Decimal `json:"spent_percentage"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		Category:        string(b.Category),
		MonthlyLimit:    b.MonthlyLimit,
		CurrentSpent:    b.CurrentSpent,
		SpentPercentage: b.SpentPercentage(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	budget := core.Budget{
		UserID:       req.UserID,
		Category:     category,
		MonthlyLimit: req.MonthlyLimit,
		CurrentSpent: decimal.Zero,
	}
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetUser(r.Context(), req.UserID); err != nil {
		writeStoreError(w, err, "user")
		return
	}

	created, err := s.store.CreateBudget(r.Context(), budget)
	if err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	var (
		budgets []core.Budget
		err     error
	)
	if userID := queryInt(r, "user_id", 0); userID > 0 {
		budgets, err = s.store.ListBudgetsByUser(r.Context(), userID)
	} else {
		budgets, err = s.store.ListBudgets(r.Context())
	}
	if err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	budget, err := s.store.GetBudget(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteBudget(r.Context(), id); err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetBudget zeroes a budget's running spend. Resets are manual only;
// the reconciler recomputes spend from the ledger on the next sync.
func (s *Server) handleResetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetBudget(r.Context(), id); err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	if err := s.store.ResetBudgetSpent(r.Context(), id); err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	budget, err := s.store.GetBudget(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "budget")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}
