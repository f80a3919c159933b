// Package ear computes the eye-aspect-ratio (EAR), a scalar descriptor of
// eye openness derived from six eyelid landmark points. Lower values mean
// more closed eyes; a sustained dip below a threshold is the raw signal the
// blink detector debounces into blink events.
//
// Compute(set) implements
//
//	EAR = (dist(p1,p5) + dist(p2,p4)) / (2 * dist(p0,p3))
//
// over a LandmarkSet of exactly PointCount ordered points: index 0 and 3
// are the horizontal eye corners, 1,5 and 2,4 the upper/lower eyelid pairs.
// It has no side effects and fails with ErrInvalidLandmarkSet on a wrong
// point count or ErrDegenerateGeometry on zero horizontal width — callers
// treat either as "no reliable reading this frame", never as a crash.
package ear
