package notify

import (
	"errors"
	"log/slog"
	"time"
)

// Sink is the alert delivery capability consumed by the blink-rate monitor.
type Sink interface {
	// Notify delivers one alert. timeout is a hint for how long a visible
	// notification should stay on screen; sinks without that concept
	// ignore it.
	Notify(title, message string, timeout time.Duration) error
}

// SlogSink writes alerts to the structured log. It never fails.
type SlogSink struct{}

// Notify implements Sink.
func (SlogSink) Notify(title, message string, _ time.Duration) error {
	slog.Warn("alert", "title", title, "message", message)
	return nil
}

// MultiSink fans one alert out to several sinks. Every sink is attempted;
// failures are joined into one error.
type MultiSink []Sink

// Notify implements Sink.
func (m MultiSink) Notify(title, message string, timeout time.Duration) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(title, message, timeout); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
