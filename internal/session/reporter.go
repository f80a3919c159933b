package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/config"
)

const requestTimeout = 5 * time.Second

// Summary is the session record accepted by the backend's POST /sessions.
type Summary struct {
	SessionStartTime string `json:"session_start_time"`
	SessionEndTime   string `json:"session_end_time"`
	TotalBlinks      int    `json:"total_blinks"`
}

// Reporter posts session summaries to the configured backend.
type Reporter struct {
	baseURL string
	token   string
	client  *http.Client
}

// New builds a Reporter, or nil when no backend is configured — callers can
// skip reporting entirely in that case.
func New(cfg config.SessionConfig) *Reporter {
	if cfg.BackendURL == "" {
		return nil
	}
	return &Reporter{
		baseURL: cfg.BackendURL,
		token:   cfg.Token(),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Report sends one session summary. The caller logs failures; a lost summary
// must never block shutdown.
func (r *Reporter) Report(ctx context.Context, start, end time.Time, totalBlinks int) error {
	body, err := json.Marshal(Summary{
		SessionStartTime: start.Format(time.RFC3339),
		SessionEndTime:   end.Format(time.RFC3339),
		TotalBlinks:      totalBlinks,
	})
	if err != nil {
		return fmt.Errorf("session report: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("session report: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("session report: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session report: backend returned HTTP %d", resp.StatusCode)
	}
	return nil
}
