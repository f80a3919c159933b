package ear

import (
	"errors"
	"fmt"
	"math"
)

// PointCount is the number of landmark points an eye contour must have.
// Index 0 and 3 are the horizontal eye corners; 1,5 and 2,4 are the upper
// and lower eyelid pairs.
const PointCount = 6

var (
	// ErrInvalidLandmarkSet is returned when a landmark set does not hold
	// exactly PointCount points.
	ErrInvalidLandmarkSet = errors.New("landmark set must hold exactly 6 points")

	// ErrDegenerateGeometry is returned when the horizontal eye width is
	// zero, which would make the ratio undefined. Callers should treat the
	// frame as having no reliable reading rather than propagating infinity.
	ErrDegenerateGeometry = errors.New("degenerate eye geometry: zero horizontal width")
)

// Point is a single landmark in pixel coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LandmarkSet is an ordered sequence of exactly PointCount eyelid landmarks
// for one eye. Sets are never mutated after creation; Clone copies where a
// longer-lived reference is needed.
type LandmarkSet []Point

// Clone returns an independent copy of the set. A nil set clones to nil.
func (s LandmarkSet) Clone() LandmarkSet {
	if s == nil {
		return nil
	}
	out := make(LandmarkSet, len(s))
	copy(out, s)
	return out
}

// Compute returns the eye-aspect-ratio for one eye:
//
//	EAR = (dist(p1,p5) + dist(p2,p4)) / (2 * dist(p0,p3))
//
// using Euclidean distance in pixel space. Compute has no side effects.
func Compute(set LandmarkSet) (float64, error) {
	if len(set) != PointCount {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidLandmarkSet, len(set))
	}

	vertA := distance(set[1], set[5])
	vertB := distance(set[2], set[4])
	horiz := distance(set[0], set[3])

	if horiz == 0 {
		return 0, ErrDegenerateGeometry
	}
	return (vertA + vertB) / (2 * horiz), nil
}

func distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
