// Package tracker runs the per-frame blink-detection pipeline.
//
// Tracker.ProcessFrame is one tick: the frame-skip policy decides whether
// to invoke the landmark provider; a fresh detection overwrites the
// landmark cache and flows through EAR computation into the Detector, the
// debounced threshold-crossing state machine that counts blinks; a
// detection gap replays the cached pair for overlay only — stale landmarks
// never feed the blink state machine. Blink and eye-data events leave
// through the observer hub, blink first.
//
// All pipeline state is mutated by ProcessFrame only, which the host must
// call from a single goroutine (the tick loop). Snapshot, Stats and
// BlinkCount hand out copies; ApplyTuning installs hot-reloaded tuning
// between frames; Close releases the provider synchronously and makes
// later ProcessFrame calls return ErrClosed.
//
// Per-frame faults are contained here: a provider failure is treated as
// "no detection", bad eye geometry skips the blink update, and the tick
// loop never terminates over a single bad frame.
package tracker
