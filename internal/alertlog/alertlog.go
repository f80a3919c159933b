package alertlog

import (
	"sync"
	"time"
)

// Alert records one fired low-blink-rate alert.
type Alert struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Rate    float64   `json:"rate_per_min"`
	FiredAt time.Time `json:"fired_at"`
}

// Log is a bounded, newest-last alert history. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Alert
	max     int
}

// New returns a Log that retains at most max alerts.
func New(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max}
}

// Append records a fired alert, evicting the oldest entry when full.
func (l *Log) Append(a Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, a)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Recent returns a copy of the history, newest first.
func (l *Log) Recent() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Alert, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	return out
}
