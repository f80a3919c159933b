package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/ear"
	"github.com/blinkwatch/blinkwatch/internal/hub"
	"github.com/blinkwatch/blinkwatch/internal/provider"
)

// ErrClosed is returned by ProcessFrame after Close.
var ErrClosed = errors.New("tracker is closed")

// Snapshot is the current eye-tracking state. BlinkCount is monotonically
// non-decreasing for the lifetime of the tracker. Landmark sets are nil
// until the first successful detection.
type Snapshot struct {
	BlinkCount     int             `json:"blink_count"`
	LeftEAR        float64         `json:"left_ear"`
	RightEAR       float64         `json:"right_ear"`
	AvgEAR         float64         `json:"avg_ear"`
	LeftLandmarks  ear.LandmarkSet `json:"left_landmarks,omitempty"`
	RightLandmarks ear.LandmarkSet `json:"right_landmarks,omitempty"`
}

// clone returns a deep copy safe to hand outside the tick routine.
func (s Snapshot) clone() Snapshot {
	s.LeftLandmarks = s.LeftLandmarks.Clone()
	s.RightLandmarks = s.RightLandmarks.Clone()
	return s
}

// Stats are cumulative pipeline counters, exposed for the metrics endpoint.
type Stats struct {
	FramesProcessed  uint64 // ticks that ran detection
	FramesSkipped    uint64 // ticks elided by the frame-skip policy
	NoDetections     uint64 // processed ticks where no face was found
	ProviderFailures uint64 // processed ticks where the provider errored
	EARFaults        uint64 // detections discarded for bad geometry
}

// Tracker owns the blink-detection pipeline state for one video stream.
type Tracker struct {
	prov provider.Provider
	hub  *hub.Hub

	mu           sync.RWMutex
	det          *Detector
	maxFrameSkip int
	skipCounter  int
	snap         Snapshot

	// cacheLeft/cacheRight hold the landmark pair of the most recent
	// genuine detection, never a replayed value. Read but not cleared when
	// detection fails, so a brief occlusion keeps the last good overlay.
	cacheLeft  ear.LandmarkSet
	cacheRight ear.LandmarkSet

	stats  Stats
	closed bool
}

// New builds a Tracker from validated tracking configuration.
func New(cfg config.TrackingConfig, p provider.Provider, h *hub.Hub) *Tracker {
	return &Tracker{
		prov:         p,
		hub:          h,
		det:          NewDetector(cfg.EARThreshold, cfg.ConsecutiveFrames),
		maxFrameSkip: cfg.MaxFrameSkip,
	}
}

// ProcessFrame runs one pipeline tick. Most frames leave through one of
// three paths: skipped (frame-skip policy — prior snapshot re-exposed,
// nothing recomputed), no detection (cached landmarks surface for overlay
// only, no EAR sample), or a fresh detection that updates the EARs and
// advances the blink state machine.
//
// All per-frame faults are contained here: a provider failure or bad eye
// geometry is logged and the tick completes with the prior state. The
// returned Snapshot is always a copy.
func (t *Tracker) ProcessFrame(ctx context.Context, frame provider.Frame) (Snapshot, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Snapshot{}, ErrClosed
	}

	t.skipCounter++
	if t.skipCounter < t.maxFrameSkip {
		// Skipped: no detection, no EAR, no blink work.
		t.stats.FramesSkipped++
		out := t.snap.clone()
		t.mu.Unlock()

		t.hub.PublishEyeData(out.LeftEAR, out.RightEAR, out.AvgEAR)
		return out, nil
	}
	t.skipCounter = 0
	t.stats.FramesProcessed++

	det, err := t.prov.Detect(ctx, frame)
	if err != nil {
		// Provider failure: same continuity path as "no face found".
		t.stats.ProviderFailures++
		slog.Warn("tracker: provider failure, treating as no detection",
			"seq", frame.Seq, "err", err)
		det = nil
	}

	blinked := false
	switch {
	case det != nil:
		// Genuine detection: overwrite the cache and run the full path.
		t.cacheLeft = det.Left.Clone()
		t.cacheRight = det.Right.Clone()
		t.snap.LeftLandmarks = det.Left.Clone()
		t.snap.RightLandmarks = det.Right.Clone()
		blinked = t.updateBlinkState(det, frame.Seq)

	case t.cacheLeft != nil:
		// Detection gap: replay the cached pair for overlay only. A stale
		// pair must never feed the blink detector — a frozen frame would
		// otherwise read as a sustained eyes-closed run.
		if err == nil {
			t.stats.NoDetections++
		}
		t.snap.LeftLandmarks = t.cacheLeft.Clone()
		t.snap.RightLandmarks = t.cacheRight.Clone()

	default:
		// Empty cache and nothing detected: the frame contributes nothing.
		if err == nil {
			t.stats.NoDetections++
		}
	}

	out := t.snap.clone()
	t.mu.Unlock()

	// Publish outside the lock; blink events precede the eye-data update so
	// downstream rate windows always observe the count in run-close order.
	if blinked {
		t.hub.PublishBlink(out.BlinkCount)
	}
	t.hub.PublishEyeData(out.LeftEAR, out.RightEAR, out.AvgEAR)
	return out, nil
}

// updateBlinkState computes both EARs for a fresh detection and advances the
// blink state machine. Returns true when a blink just completed. Bad
// geometry discards the sample: the snapshot keeps its prior EAR values and
// the state machine does not advance.
func (t *Tracker) updateBlinkState(det *provider.Detection, seq uint64) bool {
	left, err := ear.Compute(det.Left)
	if err != nil {
		t.stats.EARFaults++
		slog.Warn("tracker: unreliable left-eye reading, skipping blink update",
			"seq", seq, "err", err)
		return false
	}
	right, err := ear.Compute(det.Right)
	if err != nil {
		t.stats.EARFaults++
		slog.Warn("tracker: unreliable right-eye reading, skipping blink update",
			"seq", seq, "err", err)
		return false
	}

	t.snap.LeftEAR = left
	t.snap.RightEAR = right
	t.snap.AvgEAR = (left + right) / 2

	if t.det.Observe(t.snap.AvgEAR) {
		t.snap.BlinkCount++
		return true
	}
	return false
}

// Snapshot returns a copy of the current eye-tracking state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.clone()
}

// BlinkCount returns the current blink counter. The session-reporting
// collaborator reads this at session end.
func (t *Tracker) BlinkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.BlinkCount
}

// Stats returns a copy of the cumulative pipeline counters.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// ApplyTuning installs hot-reloaded tracking tuning. The host calls this on
// the tick goroutine, between frames.
func (t *Tracker) ApplyTuning(cfg config.TrackingConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.det.SetTuning(cfg.EARThreshold, cfg.ConsecutiveFrames)
	t.maxFrameSkip = cfg.MaxFrameSkip
	slog.Info("tracker: tuning applied",
		"ear_threshold", cfg.EARThreshold,
		"consecutive_frames", cfg.ConsecutiveFrames,
		"max_frame_skip", cfg.MaxFrameSkip,
	)
}

// Close releases the landmark provider synchronously. Any in-flight
// ProcessFrame call completes first; later calls return ErrClosed.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.prov.Close()
}
