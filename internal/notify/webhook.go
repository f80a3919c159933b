package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/config"
)

const webhookTimeout = 10 * time.Second

// WebhookSink posts alerts to the configured webhook targets. Targets whose
// URL environment variable is unset are skipped silently.
type WebhookSink struct {
	targets []config.WebhookTarget
	client  *http.Client
}

// NewWebhookSink builds a WebhookSink from the alert configuration.
func NewWebhookSink(targets []config.WebhookTarget) *WebhookSink {
	return &WebhookSink{
		targets: targets,
		client:  &http.Client{Timeout: webhookTimeout},
	}
}

// Notify implements Sink. Every target is attempted; per-target failures are
// joined so one dead endpoint does not hide another.
func (s *WebhookSink) Notify(title, message string, timeout time.Duration) error {
	var errs []error
	for _, target := range s.targets {
		url := target.URL()
		if url == "" {
			continue
		}

		var err error
		switch target.Type {
		case "slack":
			err = s.post(url, slackPayload(title, message))
		case "teams":
			err = s.post(url, teamsPayload(title, message))
		case "http":
			err = s.post(url, genericPayload(title, message, timeout))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", target.Type, err))
		}
	}
	return errors.Join(errs...)
}

func slackPayload(title, message string) []byte {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* %s", title, message),
	})
	return body
}

func teamsPayload(title, message string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"@type":    "MessageCard",
		"@context": "http://schema.org/extensions",
		"summary":  title,
		"title":    title,
		"text":     message,
	})
	return body
}

func genericPayload(title, message string, timeout time.Duration) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"title":           title,
		"message":         message,
		"timeout_seconds": int(timeout.Seconds()),
	})
	return body
}

func (s *WebhookSink) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
