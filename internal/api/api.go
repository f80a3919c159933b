package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/alertlog"
	"github.com/blinkwatch/blinkwatch/internal/monitor"
	"github.com/blinkwatch/blinkwatch/internal/sysmon"
	"github.com/blinkwatch/blinkwatch/internal/tracker"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	BlinkCount    int     `json:"blink_count"`
}

// SnapshotResponse is the body of GET /api/v1/snapshot.
type SnapshotResponse struct {
	Snapshot tracker.Snapshot `json:"snapshot"`
	Pipeline tracker.Stats    `json:"pipeline"`
	System   sysmon.Stats     `json:"system"`
}

// Handler routes all /api/v1/* endpoints.
type Handler struct {
	tracker *tracker.Tracker
	monitor *monitor.Monitor
	alerts  *alertlog.Log
	stats   *sysmon.Monitor
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler and registers its routes. stats may be nil when the
// system poller is disabled.
func New(trk *tracker.Tracker, mon *monitor.Monitor, alerts *alertlog.Log, stats *sysmon.Monitor) http.Handler {
	h := &Handler{
		tracker: trk,
		monitor: mon,
		alerts:  alerts,
		stats:   stats,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/reset", h.reset)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.started).Seconds(),
		BlinkCount:    h.tracker.BlinkCount(),
	})
}

// snapshot returns GET /api/v1/snapshot — the full live tracking state.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := SnapshotResponse{
		Snapshot: h.tracker.Snapshot(),
		Pipeline: h.tracker.Stats(),
	}
	if h.stats != nil {
		resp.System = h.stats.Last()
	}
	jsonResp(w, http.StatusOK, resp)
}

// listAlerts returns GET /api/v1/alerts — recent fired alerts, newest first.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Recent())
}

// reset handles POST /api/v1/reset — reinitializes the rate window and
// cooldown for a new session.
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.monitor.ResetTracking()
	jsonResp(w, http.StatusOK, map[string]string{"status": "reset"})
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, map[string]string{"error": msg})
}
