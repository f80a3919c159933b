package provider

import (
	"context"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/ear"
)

// Frame is one raw video frame handed into the pipeline. Data holds encoded
// image bytes (typically JPEG); the simulator ignores it and keys off Seq.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Data      []byte
}

// Detection is one successful landmark detection: the ordered eyelid
// landmark set of each eye in pixel coordinates. Detections are owned by the
// current processing cycle and never mutated after creation.
type Detection struct {
	Left  ear.LandmarkSet
	Right ear.LandmarkSet
}

// Provider is the landmark-detection capability consumed by the tracker.
//
// Detect returns (nil, nil) when no face is found in the frame. A non-nil
// error means the provider itself failed; the pipeline treats that the same
// as no detection and continues on the next tick.
type Provider interface {
	Detect(ctx context.Context, frame Frame) (*Detection, error)
	Close() error
}

// Source supplies raw frames to the tick loop. Frame acquisition hardware is
// outside the pipeline; a Source is the seam it plugs in through.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}
