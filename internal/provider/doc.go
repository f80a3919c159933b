// Package provider defines the landmark-detection boundary of the pipeline
// and the concrete providers behind it.
//
// A Provider maps one video frame to the six eyelid landmarks of each eye:
//
//	Detect(ctx, frame) -> (*Detection, error)
//
// where (nil, nil) means "no face found" and a non-nil error means the
// provider itself failed — the pipeline treats both as a detection gap and
// continues on the next tick. A Source supplies the frames; acquisition
// hardware lives outside the pipeline and plugs in through this seam.
//
// Two pairs ship here:
//
//   - Simulator + TickSource: a deterministic blink generator keyed off the
//     frame sequence number, so the full pipeline runs without a camera and
//     tests have ground truth.
//   - Remote + HTTPSource: an external landmark service receiving frame
//     bytes over HTTP, fed by a polled still-image URL (e.g. an IP camera
//     snapshot endpoint).
package provider
