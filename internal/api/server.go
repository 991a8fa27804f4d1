// Package api exposes the HTTP trigger surface: start a scan run for a
// validated domain and read stored results by name.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prowlsec/prowl/internal/engine"
	"github.com/prowlsec/prowl/internal/store"
)

// RunFunc starts a full scan run for a validated domain and returns the
// aggregate result.
type RunFunc func(ctx context.Context, domain string) (*engine.DomainScan, error)

// Server wires the trigger surface to the engine and the store.
type Server struct {
	Store      engine.Store
	Run        RunFunc
	RunTimeout time.Duration // budget for background runs
}

const defaultRunTimeout = 15 * time.Minute

// Routes returns the chi router for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", s.handleCreateScan)
		r.Get("/scans/{domain}", s.handleGetScan)
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createScanRequest struct {
	Domain string `json:"domain"`
}

// handleCreateScan validates the domain and starts a run. By default the
// run continues in the background and 202 is returned; with ?wait=true the
// handler blocks until the run finishes and returns the full result.
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req createScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain name is required")
		return
	}
	if !ValidDomain(domain) {
		writeError(w, http.StatusBadRequest, "invalid domain")
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		scan, err := s.Run(r.Context(), domain)
		if err != nil {
			// The engine marks the scan failed before returning; surface
			// the identifier it created alongside the failure.
			status := http.StatusInternalServerError
			resp := map[string]any{"error": "scan failed"}
			if scan != nil {
				resp["id"] = scan.ID
				resp["domain"] = scan.Domain
				resp["status"] = scan.Status
			}
			writeJSON(w, status, resp)
			return
		}
		writeJSON(w, http.StatusOK, scan)
		return
	}

	timeout := s.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// Errors are already absorbed into the stored record's status.
		_, _ = s.Run(ctx, domain)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"domain": domain,
		"status": string(engine.StatusRunning),
	})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(chi.URLParam(r, "domain"))

	scan, err := s.Store.Get(r.Context(), domain)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "domain not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}

	writeJSON(w, http.StatusOK, scan)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
