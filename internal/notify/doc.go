// Package notify delivers health alerts to the outside world.
//
// Sink is the single delivery capability the blink-rate monitor consumes:
//
//	Notify(title, message string, timeout time.Duration) error
//
// Implementations: SlogSink (structured log, never fails), DesktopSink
// (native desktop notification via beeep), WebhookSink (slack, teams and
// generic-http targets with env-resolved URLs), and MultiSink, which
// attempts every sink and joins their failures into one error.
//
// Sink failures are for the caller to log — alert delivery must never
// disturb the tracking pipeline.
package notify
