// Package monitor exposes the daemon's telemetry over HTTP: JSON status
// and history endpoints for tooling, plus debug chart endpoints for eyeball
// checks during tuning.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekstremedia/raspilapse-sub000/internal/db"
	"github.com/ekstremedia/raspilapse-sub000/internal/exposure"
	"github.com/ekstremedia/raspilapse-sub000/internal/monitoring"
)

const defaultHistorySize = 720 // 6h at a 30s cadence

// WebServer serves exposure telemetry. The engine loop feeds it one
// Diagnostics per cycle through Observe; handlers read the in-memory ring
// and fall back to the store for anything older.
type WebServer struct {
	address string
	runID   string
	started time.Time
	server  *http.Server
	db      *db.DB

	mu      sync.Mutex
	history []exposure.Diagnostics // ring, newest last
	size    int
	cycles  int64
}

// Config contains configuration options for the web server.
type Config struct {
	Address     string
	DB          *db.DB
	HistorySize int // 0 uses the default
}

// NewWebServer creates a web server with a fresh run identifier.
func NewWebServer(cfg Config) *WebServer {
	size := cfg.HistorySize
	if size <= 0 {
		size = defaultHistorySize
	}
	ws := &WebServer{
		address: cfg.Address,
		runID:   uuid.NewString(),
		started: time.Now(),
		db:      cfg.DB,
		size:    size,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// RunID returns this daemon run's identifier, stamped on persisted cycles.
func (ws *WebServer) RunID() string {
	return ws.runID
}

// Observe records one cycle's diagnostics for the status and history
// endpoints. Safe to call from the engine loop goroutine.
func (ws *WebServer) Observe(d exposure.Diagnostics) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.cycles++
	ws.history = append(ws.history, d)
	if len(ws.history) > ws.size {
		ws.history = ws.history[len(ws.history)-ws.size:]
	}
}

func (ws *WebServer) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/exposure/status", ws.handleStatus)
	mux.HandleFunc("/api/exposure/history", ws.handleHistory)
	mux.HandleFunc("/debug/exposure/chart", ws.handleChart)
	mux.HandleFunc("/debug/exposure/plot.png", ws.handlePlotPNG)
	return mux
}

// Start runs the HTTP server until the context is cancelled, then shuts it
// down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		monitoring.Logf("monitor listening on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("monitor server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		return ws.server.Close()
	}
	return nil
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("monitor: encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ws.writeJSON(w, map[string]string{"status": "ok", "run_id": ws.runID})
}

type statusResponse struct {
	RunID        string                `json:"run_id"`
	StartedAt    time.Time             `json:"started_at"`
	CyclesRun    int64                 `json:"cycles_run"`
	CyclesStored int64                 `json:"cycles_stored,omitempty"`
	Latest       *exposure.Diagnostics `json:"latest,omitempty"`
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	ws.mu.Lock()
	resp := statusResponse{
		RunID:     ws.runID,
		StartedAt: ws.started,
		CyclesRun: ws.cycles,
	}
	if n := len(ws.history); n > 0 {
		latest := ws.history[n-1]
		resp.Latest = &latest
	}
	ws.mu.Unlock()

	if ws.db != nil {
		if n, err := ws.db.CycleCount(); err == nil {
			resp.CyclesStored = n
		}
	}
	ws.writeJSON(w, resp)
}

func (ws *WebServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			ws.writeJSONError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		limit = v
	}

	history := ws.snapshot(limit)
	ws.writeJSON(w, map[string]interface{}{
		"run_id": ws.runID,
		"cycles": history,
	})
}

// snapshot copies up to limit most recent diagnostics, oldest first.
// limit 0 means everything in the ring.
func (ws *WebServer) snapshot(limit int) []exposure.Diagnostics {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	n := len(ws.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]exposure.Diagnostics, n)
	copy(out, ws.history[len(ws.history)-n:])
	return out
}
