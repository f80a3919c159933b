// Package monitor watches the blink-count stream and raises a cooldown-gated
// health alert when the user's blink rate drops below a safe threshold.
//
// Monitor subscribes to the observer hub; each OnBlinkDetected call is a
// chance to close the current rate window. Once the window has lasted at
// least the configured check interval, it computes
//
//	rate = (count - count_at_window_start) / elapsed_seconds * 60
//
// and alerts through its notify.Sink when the rate is below the minimum —
// unless a previous alert was delivered within the cooldown. Windows never
// overlap: every evaluation restarts the window at the current count/time,
// so each window's rate is independent of prior ones.
//
// Sink failures are logged, never propagated, and start no cooldown: the
// next window's breach is the implicit retry. ResetTracking reinitializes
// the window and clears the cooldown for a fresh session.
package monitor
