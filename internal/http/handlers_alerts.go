package http

import (
	"net/http"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type alertResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BudgetID  *int64    `json:"budget_id,omitempty"`
	AlertType string    `json:"alert_type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toAlertResponse(a core.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		BudgetID:  a.BudgetID,
		AlertType: string(a.Kind),
		Message:   a.Message,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
}

func (s *Server) handleListUserAlerts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetUser(r.Context(), id); err != nil {
		writeStoreError(w, err, "user")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	alerts, err := s.store.ListAlertsByUser(r.Context(), id, unreadOnly)
	if err != nil {
		writeStoreError(w, err, "alert")
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.MarkAlertRead(r.Context(), id); err != nil {
		writeStoreError(w, err, "alert")
		return
	}
	alert, err := s.store.GetAlert(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "alert")
		return
	}
	writeJSON(w, http.StatusOK, toAlertResponse(alert))
}

func (s *Server) handleMarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetUser(r.Context(), id); err != nil {
		writeStoreError(w, err, "user")
		return
	}
	count, err := s.store.MarkAllAlertsRead(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked_read": count})
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.DeleteAlert(r.Context(), id); err != nil {
		writeStoreError(w, err, "alert")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
