package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/alertlog"
	"github.com/blinkwatch/blinkwatch/internal/api"
	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/hub"
	"github.com/blinkwatch/blinkwatch/internal/monitor"
	"github.com/blinkwatch/blinkwatch/internal/notify"
	"github.com/blinkwatch/blinkwatch/internal/provider"
	"github.com/blinkwatch/blinkwatch/internal/tracker"
)

func newServer(t *testing.T) (*httptest.Server, *alertlog.Log) {
	t.Helper()
	cfg := config.Defaults()
	trk := tracker.New(cfg.Tracking, provider.NewSimulator(10, 2, 0), hub.New())
	alerts := alertlog.New(10)
	mon := monitor.New(cfg.Alerts, notify.SlogSink{}, alerts)

	srv := httptest.NewServer(api.New(trk, mon, alerts, nil))
	t.Cleanup(srv.Close)
	return srv, alerts
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Status = %q, want ok", body.Status)
	}
	if body.BlinkCount != 0 {
		t.Errorf("BlinkCount = %d, want 0", body.BlinkCount)
	}
}

func TestSnapshot(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()

	var body api.SnapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Snapshot.BlinkCount != 0 || body.Pipeline.FramesProcessed != 0 {
		t.Errorf("unexpected non-zero state: %+v", body)
	}
}

func TestAlerts(t *testing.T) {
	srv, alerts := newServer(t)
	alerts.Append(alertlog.Alert{Title: "Eye Health Alert", Rate: 4, FiredAt: time.Now()})

	resp, err := http.Get(srv.URL + "/api/v1/alerts")
	if err != nil {
		t.Fatalf("GET alerts: %v", err)
	}
	defer resp.Body.Close()

	var body []alertlog.Alert
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].Rate != 4 {
		t.Errorf("alerts = %+v, want one entry with rate 4", body)
	}
}

func TestReset(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("POST reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	// Reset is POST-only.
	getResp, err := http.Get(srv.URL + "/api/v1/reset")
	if err != nil {
		t.Fatalf("GET reset: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET reset status = %d, want 405", getResp.StatusCode)
	}
}
