package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type createUserRequest struct {
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	Password            string           `json:"password"`
	PhoneNo             string           `json:"phone_no"`
	OverallBalanceLimit *decimal.Decimal `json:"overall_balance_limit,omitempty"`
}

type updateUserRequest struct {
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	PhoneNo             string           `json:"phone_no"`
	OverallBalanceLimit *decimal.Decimal `json:"overall_balance_limit,omitempty"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID                  int64            `json:"id"`
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	PhoneNo             string           `json:"phone_no"`
	OverallBalanceLimit *decimal.Decimal `json:"overall_balance_limit,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		PhoneNo:             u.PhoneNo,
		OverallBalanceLimit: u.OverallBalanceLimit,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := core.User{
		Name:                req.Name,
		Email:               req.Email,
		Password:            string(hashed),
		PhoneNo:             req.PhoneNo,
		OverallBalanceLimit: req.OverallBalanceLimit,
	}
	if err := user.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateUser(r.Context(), user)
	if err != nil {
		writeStoreError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "user")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "user")
		return
	}
	user.Name = req.Name
	user.Email = req.Email
	user.PhoneNo = req.PhoneNo
	user.OverallBalanceLimit = req.OverallBalanceLimit
	if err := user.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "user")
		return
	}
	updated, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req changePasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.store.UpdateUserPassword(r.Context(), id, string(hashed)); err != nil {
		writeStoreError(w, err, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		writeStoreError(w, err, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
