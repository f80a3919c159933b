package monitor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/alertlog"
	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/notify"
)

// alertTimeout is the on-screen duration hint passed to the alert sink.
const alertTimeout = 10 * time.Second

const alertTitle = "Eye Health Alert"

// Monitor computes a windowed blinks-per-minute rate from blink-count events
// and alerts when it falls below the configured minimum. Windows never
// overlap: after each evaluation the window restarts at the current
// count/time, so each window's rate is independent of prior windows.
//
// Monitor is safe for concurrent use.
type Monitor struct {
	minPerMinute  float64
	checkInterval time.Duration
	cooldown      time.Duration
	sink          notify.Sink
	history       *alertlog.Log

	mu                 sync.Mutex
	windowStart        time.Time
	countAtWindowStart int
	lastAlert          time.Time // zero until the first alert is delivered
	alertsFired        uint64

	now func() time.Time // injectable for deterministic tests
}

// New creates a Monitor from validated alert configuration. history may be
// nil when no alert feed is wanted.
func New(cfg config.AlertsConfig, sink notify.Sink, history *alertlog.Log) *Monitor {
	m := &Monitor{
		minPerMinute:  cfg.MinBlinksPerMinute,
		checkInterval: cfg.CheckInterval,
		cooldown:      cfg.Cooldown,
		sink:          sink,
		history:       history,
		now:           time.Now,
	}
	m.windowStart = m.now()
	return m
}

// OnBlinkDetected implements hub.Observer. Each blink-count change is a
// chance to close the current rate window; nothing happens until the window
// has lasted at least the configured check interval.
func (m *Monitor) OnBlinkDetected(count int) {
	m.mu.Lock()
	now := m.now()
	elapsed := now.Sub(m.windowStart)
	if elapsed < m.checkInterval {
		m.mu.Unlock()
		return
	}

	rate := float64(count-m.countAtWindowStart) / elapsed.Seconds() * 60

	breach := rate < m.minPerMinute
	suppressed := breach && !m.lastAlert.IsZero() && now.Sub(m.lastAlert) < m.cooldown
	fire := breach && !suppressed

	// The window always resets after evaluation, fired or not.
	m.countAtWindowStart = count
	m.windowStart = now
	m.mu.Unlock()

	slog.Info("monitor: blink rate window closed",
		"rate_per_min", rate,
		"threshold", m.minPerMinute,
		"breach", breach,
		"suppressed", suppressed,
	)

	if fire {
		m.raise(rate, now)
	}
}

// OnEyeDataUpdated implements hub.Observer. EAR updates carry no count
// change, so the monitor ignores them.
func (m *Monitor) OnEyeDataUpdated(_, _, _ float64) {}

// raise delivers the alert. Sink failures are logged and never retried
// synchronously — the next window's evaluation is the implicit retry, so
// the cooldown, counter and history record only a delivered alert. A failed
// delivery leaves no trace the next breach could be suppressed by.
func (m *Monitor) raise(rate float64, firedAt time.Time) {
	message := fmt.Sprintf(
		"Low blink rate detected: %.1f blinks/min\nRecommended: %.0f+ blinks/min\nConsider taking a break and blinking more frequently.",
		rate, m.minPerMinute,
	)

	if err := m.sink.Notify(alertTitle, message, alertTimeout); err != nil {
		slog.Error("monitor: alert delivery failed", "err", err)
		return
	}

	m.mu.Lock()
	m.lastAlert = firedAt
	m.alertsFired++
	m.mu.Unlock()

	if m.history != nil {
		m.history.Append(alertlog.Alert{
			Title:   alertTitle,
			Message: message,
			Rate:    rate,
			FiredAt: firedAt,
		})
	}
	slog.Info("monitor: low blink rate alert sent", "rate_per_min", rate)
}

// ResetTracking reinitializes the rate window and clears the last-alert
// timestamp, so a fresh session can alert without waiting out a stale
// cooldown.
func (m *Monitor) ResetTracking() {
	m.mu.Lock()
	m.countAtWindowStart = 0
	m.windowStart = m.now()
	m.lastAlert = time.Time{}
	m.mu.Unlock()
	slog.Info("monitor: rate tracking reset")
}

// AlertsFired returns the number of alerts raised since construction,
// surviving ResetTracking. Exposed for the metrics endpoint.
func (m *Monitor) AlertsFired() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alertsFired
}
