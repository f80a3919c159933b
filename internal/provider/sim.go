package provider

import (
	"context"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/ear"
)

// Synthetic eye geometry. Open eyes have EAR = openGap/eyeWidth ≈ 0.33,
// closed eyes ≈ 0.10 — comfortably either side of the usual 0.21 threshold.
const (
	simEyeWidth  = 30
	simOpenGap   = 10
	simClosedGap = 3

	leftEyeX  = 120
	rightEyeX = 200
	simEyeY   = 150
)

// Simulator is a deterministic landmark provider that produces a pair of eye
// contours blinking on a fixed cadence. It lets the full pipeline run
// without a camera or detection model, and gives tests a ground truth.
type Simulator struct {
	// blinkPeriod is the frame distance between blink starts; blinkLen is
	// how many consecutive frames the eyes stay shut at each blink.
	blinkPeriod uint64
	blinkLen    uint64

	// dropEvery simulates a transient detection gap ("face out of frame")
	// on every Nth frame. 0 disables gaps.
	dropEvery uint64
}

// NewSimulator returns a Simulator blinking for blinkLen frames out of every
// blinkPeriod, with an optional no-detection gap every dropEvery frames.
func NewSimulator(blinkPeriod, blinkLen, dropEvery int) *Simulator {
	if blinkPeriod < 1 {
		blinkPeriod = 1
	}
	return &Simulator{
		blinkPeriod: uint64(blinkPeriod),
		blinkLen:    uint64(blinkLen),
		dropEvery:   uint64(dropEvery),
	}
}

// Detect derives the eye state from frame.Seq alone, so replaying the same
// sequence always yields the same detections.
func (s *Simulator) Detect(_ context.Context, frame Frame) (*Detection, error) {
	if s.dropEvery > 0 && frame.Seq%s.dropEvery == 0 && frame.Seq > 0 {
		return nil, nil
	}

	closed := frame.Seq%s.blinkPeriod < s.blinkLen
	gap := simOpenGap
	if closed {
		gap = simClosedGap
	}
	return &Detection{
		Left:  eyeContour(leftEyeX, simEyeY, gap),
		Right: eyeContour(rightEyeX, simEyeY, gap),
	}, nil
}

// Close implements Provider. The simulator holds no resources.
func (s *Simulator) Close() error { return nil }

// eyeContour builds a six-point eyelid contour at (ox, oy) with the given
// vertical gap, in the fixed order the EAR math expects.
func eyeContour(ox, oy, gap int) ear.LandmarkSet {
	half := gap / 2
	if half < 1 {
		half = 1
	}
	third := simEyeWidth / 3
	return ear.LandmarkSet{
		{X: ox, Y: oy},
		{X: ox + third, Y: oy - half},
		{X: ox + 2*third, Y: oy - half},
		{X: ox + simEyeWidth, Y: oy},
		{X: ox + 2*third, Y: oy + half},
		{X: ox + third, Y: oy + half},
	}
}

// TickSource produces empty frames with a monotonically increasing sequence
// number. It pairs with the Simulator, which needs no image bytes.
type TickSource struct {
	seq uint64
	now func() time.Time
}

// NewTickSource returns a ready TickSource.
func NewTickSource() *TickSource {
	return &TickSource{now: time.Now}
}

// Next returns the next synthetic frame. It never fails.
func (t *TickSource) Next(_ context.Context) (Frame, error) {
	f := Frame{Seq: t.seq, Timestamp: t.now()}
	t.seq++
	return f, nil
}
