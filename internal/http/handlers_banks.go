package http

import (
	"net/http"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type createBankRequest struct {
	BankName string `json:"bank_name"`
}

type bankResponse struct {
	ID        int64     `json:"id"`
	BankName  string    `json:"bank_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBankResponse(b core.Bank) bankResponse {
	return bankResponse{
		ID:        b.ID,
		BankName:  b.BankName,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (s *Server) handleCreateBank(w http.ResponseWriter, r *http.Request) {
	var req createBankRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bank := core.Bank{BankName: req.BankName}
	if err := bank.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateBank(r.Context(), bank)
	if err != nil {
		writeStoreError(w, err, "bank")
		return
	}
	writeJSON(w, http.StatusCreated, toBankResponse(created))
}

func (s *Server) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.store.ListBanks(r.Context())
	if err != nil {
		writeStoreError(w, err, "bank")
		return
	}
	out := make([]bankResponse, 0, len(banks))
	for _, b := range banks {
		out = append(out, toBankResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBank(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bank, err := s.store.GetBank(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "bank")
		return
	}
	writeJSON(w, http.StatusOK, toBankResponse(bank))
}

func (s *Server) handleDeleteBank(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteBank(r.Context(), id); err != nil {
		writeStoreError(w, err, "bank")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
