// Package http exposes the REST API: CRUD over the ledger entities plus the
// administrative sync trigger. Handlers are thin request/response mappings
// over the storage layer and services.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/services"
	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/storage"
)

type Server struct {
	http.Server
	store        *storage.Repository
	transactions *services.TransactionService
	syncService  *services.SyncService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, store *storage.Repository, transactions *services.TransactionService, syncService *services.SyncService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        store,
		transactions: transactions,
		syncService:  syncService,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /users", s.withMiddleware(s.handleCreateUser))
	mux.HandleFunc("GET /users", s.withMiddleware(s.handleListUsers))
	mux.HandleFunc("GET /users/{id}", s.withMiddleware(s.handleGetUser))
	mux.HandleFunc("PUT /users/{id}", s.withMiddleware(s.handleUpdateUser))
	mux.HandleFunc("PUT /users/{id}/password", s.withMiddleware(s.handleChangePassword))
	mux.HandleFunc("DELETE /users/{id}", s.withMiddleware(s.handleDeleteUser))
	mux.HandleFunc("GET /users/{id}/alerts", s.withMiddleware(s.handleListUserAlerts))
	mux.HandleFunc("POST /users/{id}/alerts/read-all", s.withMiddleware(s.handleMarkAllAlertsRead))

	mux.HandleFunc("POST /banks", s.withMiddleware(s.handleCreateBank))
	mux.HandleFunc("GET /banks", s.withMiddleware(s.handleListBanks))
	mux.HandleFunc("GET /banks/{id}", s.withMiddleware(s.handleGetBank))
	mux.HandleFunc("DELETE /banks/{id}", s.withMiddleware(s.handleDeleteBank))

	mux.HandleFunc("POST /accounts", s.withMiddleware(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.withMiddleware(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/{id}", s.withMiddleware(s.handleGetAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.withMiddleware(s.handleDeleteAccount))
	mux.HandleFunc("GET /accounts/{id}/transactions", s.withMiddleware(s.handleListAccountTransactions))

	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/{id}", s.withMiddleware(s.handleGetTransaction))

	mux.HandleFunc("POST /budgets", s.withMiddleware(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("GET /budgets/{id}", s.withMiddleware(s.handleGetBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.withMiddleware(s.handleDeleteBudget))
	mux.HandleFunc("POST /budgets/{id}/reset", s.withMiddleware(s.handleResetBudget))

	mux.HandleFunc("POST /alerts/{id}/read", s.withMiddleware(s.handleMarkAlertRead))
	mux.HandleFunc("DELETE /alerts/{id}", s.withMiddleware(s.handleDeleteAlert))

	mux.HandleFunc("POST /sync", s.withMiddleware(s.handleTriggerSync))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the store answers a trivial query.
	if _, err := s.store.ListBanks(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleTriggerSync runs the full sync workflow on demand.
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := s.syncService.FullSyncWorkflow(r.Context()); err != nil {
		if err == services.ErrSyncInProgress {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// Simple in-memory rate limiter, per client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}
