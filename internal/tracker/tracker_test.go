package tracker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/blinkwatch/blinkwatch/internal/config"
	"github.com/blinkwatch/blinkwatch/internal/ear"
	"github.com/blinkwatch/blinkwatch/internal/hub"
	"github.com/blinkwatch/blinkwatch/internal/provider"
)

// eyes builds a detection whose EAR is gap/30 for both eyes.
func eyes(gap int) *provider.Detection {
	contour := func(ox int) ear.LandmarkSet {
		half := gap / 2
		return ear.LandmarkSet{
			{X: ox, Y: 100},
			{X: ox + 10, Y: 100 - half},
			{X: ox + 20, Y: 100 - half},
			{X: ox + 30, Y: 100},
			{X: ox + 20, Y: 100 + half},
			{X: ox + 10, Y: 100 + half},
		}
	}
	return &provider.Detection{Left: contour(0), Right: contour(60)}
}

var (
	openEyes   = func() *provider.Detection { return eyes(10) } // EAR 1/3
	closedEyes = func() *provider.Detection { return eyes(2) }  // EAR 1/15
)

// scriptProvider replays a scripted sequence of detection outcomes.
// A nil entry means "no face found"; errScript entries fail instead.
type scriptProvider struct {
	script  []*provider.Detection
	errAt   map[int]error
	calls   int
	closed  bool
}

func (p *scriptProvider) Detect(_ context.Context, _ provider.Frame) (*provider.Detection, error) {
	i := p.calls
	p.calls++
	if err, ok := p.errAt[i]; ok {
		return nil, err
	}
	if i < len(p.script) {
		return p.script[i], nil
	}
	return nil, nil
}

func (p *scriptProvider) Close() error {
	p.closed = true
	return nil
}

func trackingConfig(maxFrameSkip int) config.TrackingConfig {
	cfg := config.Defaults().Tracking
	cfg.MaxFrameSkip = maxFrameSkip
	return cfg
}

// tick pushes n frames through the tracker.
func tick(t *testing.T, trk *Tracker, n int) Snapshot {
	t.Helper()
	var snap Snapshot
	for i := 0; i < n; i++ {
		var err error
		snap, err = trk.ProcessFrame(context.Background(), provider.Frame{Seq: uint64(i)})
		if err != nil {
			t.Fatalf("ProcessFrame %d: %v", i, err)
		}
	}
	return snap
}

func TestTracker_FrameSkipPolicy(t *testing.T) {
	p := &scriptProvider{}
	trk := New(trackingConfig(3), p, hub.New())

	tick(t, trk, 9)

	// With max_frame_skip=3, exactly 1 of any 3 consecutive ticks runs
	// detection.
	if p.calls != 3 {
		t.Errorf("provider invoked %d times over 9 ticks, want 3", p.calls)
	}
	st := trk.Stats()
	if st.FramesProcessed != 3 || st.FramesSkipped != 6 {
		t.Errorf("processed/skipped = %d/%d, want 3/6", st.FramesProcessed, st.FramesSkipped)
	}
}

func TestTracker_ProcessesEveryFrameAtSkipZero(t *testing.T) {
	p := &scriptProvider{}
	trk := New(trackingConfig(0), p, hub.New())
	tick(t, trk, 5)
	if p.calls != 5 {
		t.Errorf("provider invoked %d times, want 5", p.calls)
	}
}

func TestTracker_BlinkEndToEnd(t *testing.T) {
	// open, closed, closed, open → one blink (minRun 2).
	p := &scriptProvider{script: []*provider.Detection{
		openEyes(), closedEyes(), closedEyes(), openEyes(),
	}}
	h := hub.New()
	trk := New(trackingConfig(0), p, h)

	var events []int
	h.Subscribe("probe", blinkRecorder{&events})

	snap := tick(t, trk, 4)
	if snap.BlinkCount != 1 {
		t.Errorf("BlinkCount = %d, want 1", snap.BlinkCount)
	}
	if !reflect.DeepEqual(events, []int{1}) {
		t.Errorf("blink events = %v, want [1]", events)
	}
	if snap.AvgEAR < 0.21 {
		t.Errorf("final AvgEAR = %v, want open-eye value", snap.AvgEAR)
	}
}

func TestTracker_CacheBridgesDetectionGap(t *testing.T) {
	p := &scriptProvider{script: []*provider.Detection{
		openEyes(), nil, nil,
	}}
	trk := New(trackingConfig(0), p, hub.New())

	first := tick(t, trk, 1)
	if first.LeftLandmarks == nil {
		t.Fatal("no landmarks after successful detection")
	}

	// Gap ticks: the cached pair keeps surfacing for overlay, and the blink
	// state does not move.
	for i := 0; i < 2; i++ {
		snap, err := trk.ProcessFrame(context.Background(), provider.Frame{Seq: uint64(i + 1)})
		if err != nil {
			t.Fatalf("ProcessFrame: %v", err)
		}
		if !reflect.DeepEqual(snap.LeftLandmarks, first.LeftLandmarks) {
			t.Error("gap tick did not reuse cached landmarks")
		}
		if snap.BlinkCount != first.BlinkCount || snap.AvgEAR != first.AvgEAR {
			t.Error("gap tick changed blink state")
		}
	}
}

func TestTracker_EmptyCacheGapProducesNothing(t *testing.T) {
	p := &scriptProvider{script: []*provider.Detection{nil, nil}}
	trk := New(trackingConfig(0), p, hub.New())

	snap := tick(t, trk, 2)
	if snap.LeftLandmarks != nil || snap.RightLandmarks != nil {
		t.Error("no-detection ticks with an empty cache produced landmarks")
	}
	if snap.BlinkCount != 0 || snap.AvgEAR != 0 {
		t.Error("no-detection ticks advanced blink state")
	}
}

func TestTracker_StaleGapDoesNotCountAsBlink(t *testing.T) {
	// Eyes close, then the face leaves the frame for a long stretch, then
	// returns open. The occlusion itself must not complete a blink: the
	// detector only sees fresh samples (closed, closed, open) and counts
	// exactly the one genuine blink at re-detection.
	script := []*provider.Detection{closedEyes(), closedEyes()}
	for i := 0; i < 30; i++ {
		script = append(script, nil)
	}
	script = append(script, openEyes())

	p := &scriptProvider{script: script}
	snap := tick(t, New(trackingConfig(0), p, hub.New()), len(script))
	if snap.BlinkCount != 1 {
		t.Errorf("BlinkCount = %d, want 1 (occlusion must not invent blinks)", snap.BlinkCount)
	}
}

func TestTracker_ProviderFailureTreatedAsNoDetection(t *testing.T) {
	p := &scriptProvider{
		script: []*provider.Detection{openEyes(), nil, openEyes()},
		errAt:  map[int]error{1: errors.New("model crashed")},
	}
	trk := New(trackingConfig(0), p, hub.New())

	snap := tick(t, trk, 3)
	if snap.BlinkCount != 0 {
		t.Errorf("BlinkCount = %d, want 0", snap.BlinkCount)
	}
	st := trk.Stats()
	if st.ProviderFailures != 1 {
		t.Errorf("ProviderFailures = %d, want 1", st.ProviderFailures)
	}
}

func TestTracker_DegenerateGeometrySkipsFrame(t *testing.T) {
	bad := openEyes()
	bad.Left = ear.LandmarkSet{{X: 5, Y: 5}, {X: 6, Y: 2}, {X: 7, Y: 2}, {X: 5, Y: 5}, {X: 7, Y: 8}, {X: 6, Y: 8}}

	p := &scriptProvider{script: []*provider.Detection{openEyes(), bad}}
	trk := New(trackingConfig(0), p, hub.New())

	good := tick(t, trk, 1)
	snap, err := trk.ProcessFrame(context.Background(), provider.Frame{Seq: 1})
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}

	// The bad sample is discarded: EARs keep their prior values and the
	// pipeline carries on.
	if snap.AvgEAR != good.AvgEAR {
		t.Errorf("AvgEAR = %v after degenerate frame, want %v", snap.AvgEAR, good.AvgEAR)
	}
	if trk.Stats().EARFaults != 1 {
		t.Errorf("EARFaults = %d, want 1", trk.Stats().EARFaults)
	}
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	p := &scriptProvider{script: []*provider.Detection{openEyes()}}
	trk := New(trackingConfig(0), p, hub.New())
	tick(t, trk, 1)

	snap := trk.Snapshot()
	snap.LeftLandmarks[0].X = 9999

	if trk.Snapshot().LeftLandmarks[0].X == 9999 {
		t.Error("Snapshot leaked a live reference to internal state")
	}
}

func TestTracker_Close(t *testing.T) {
	p := &scriptProvider{}
	trk := New(trackingConfig(0), p, hub.New())

	if err := trk.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.closed {
		t.Error("Close did not release the provider")
	}
	if err := trk.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}
	if _, err := trk.ProcessFrame(context.Background(), provider.Frame{}); !errors.Is(err, ErrClosed) {
		t.Errorf("ProcessFrame after Close: err = %v, want ErrClosed", err)
	}
}

func TestTracker_ApplyTuning(t *testing.T) {
	// A 1-frame dip does not count at minRun 2, but does after tuning drops
	// minRun to 1.
	p := &scriptProvider{script: []*provider.Detection{
		openEyes(), closedEyes(), openEyes(), // run of 1: no blink at minRun 2
		closedEyes(), openEyes(), // run of 1: blink at minRun 1
	}}
	cfg := trackingConfig(0)
	trk := New(cfg, p, hub.New())

	tick(t, trk, 3)
	if got := trk.BlinkCount(); got != 0 {
		t.Fatalf("BlinkCount = %d before tuning, want 0", got)
	}

	cfg.ConsecutiveFrames = 1
	trk.ApplyTuning(cfg)

	for i := 3; i < 5; i++ {
		if _, err := trk.ProcessFrame(context.Background(), provider.Frame{Seq: uint64(i)}); err != nil {
			t.Fatalf("ProcessFrame %d: %v", i, err)
		}
	}
	if got := trk.BlinkCount(); got != 1 {
		t.Errorf("BlinkCount = %d after tuning, want 1", got)
	}
}

// blinkRecorder appends each published blink count to its slice.
type blinkRecorder struct{ events *[]int }

func (b blinkRecorder) OnBlinkDetected(count int)           { *b.events = append(*b.events, count) }
func (b blinkRecorder) OnEyeDataUpdated(_, _, _ float64)    {}
