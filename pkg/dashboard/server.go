package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signal-feed/pkg/feed"
	"github.com/signal-feed/pkg/orchestrator"
)

// Server exposes the composed feed and the imperative refresh/scan triggers
// to the presentation layer. JSON only; rendering lives elsewhere.
type Server struct {
	orch *orchestrator.Orchestrator
	port int

	// baseCtx outlives individual requests: auto-scan loops started from a
	// request must not die with it.
	baseCtx context.Context
}

func New(orch *orchestrator.Orchestrator, port int) *Server {
	return &Server{orch: orch, port: port}
}

func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	mux := http.NewServeMux()
	mux.HandleFunc("/api/feed", cors(s.handleFeed))
	mux.HandleFunc("/api/status", cors(s.handleStatus))
	mux.HandleFunc("/api/refresh", cors(s.handleRefresh))
	mux.HandleFunc("/api/scan", cors(s.handleScan))
	mux.HandleFunc("/api/autoscan", cors(s.handleAutoScan))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.port), Handler: mux}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("🌐 dashboard API started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func cors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	key := feed.ParseSortKey(r.URL.Query().Get("sort"))
	writeJSON(w, s.orch.View(key))
}

type statusView struct {
	Status    orchestrator.Status   `json:"status"`
	LastError string                `json:"last_error,omitempty"`
	AutoScan  bool                  `json:"auto_scan"`
	LastScan  *orchestrator.ScanJob `json:"last_scan,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sv := statusView{
		Status:   s.orch.Status(),
		AutoScan: s.orch.AutoScanEnabled(),
		LastScan: s.orch.LastScan(),
	}
	if err := s.orch.LastError(); err != nil {
		sv.LastError = err.Error()
	}
	writeJSON(w, sv)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "POST only", 405)
		return
	}
	if err := s.orch.Refresh(r.Context()); err != nil {
		// Stale view is still being served; report but don't fail hard.
		writeJSON(w, map[string]string{"status": "failed", "error": err.Error()})
		return
	}
	writeJSON(w, map[string]string{"status": string(s.orch.Status())})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "POST only", 405)
		return
	}

	job, err := s.orch.ScanNow(r.Context())
	switch {
	case errors.Is(err, orchestrator.ErrScanInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, orchestrator.ErrNoAccounts):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		writeJSON(w, job)
	}
}

func (s *Server) handleAutoScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "POST only", 405)
		return
	}

	body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", 400)
		return
	}

	if req.Enabled {
		s.orch.EnableAutoScan(s.baseCtx)
	} else {
		s.orch.DisableAutoScan()
	}
	writeJSON(w, map[string]bool{"auto_scan": s.orch.AutoScanEnabled()})
}
