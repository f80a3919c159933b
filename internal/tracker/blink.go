package tracker

// Detector is the debounced blink edge detector: a threshold-crossing state
// machine over the averaged EAR stream. It fires once per qualifying
// closed-eye run, never once per below-threshold frame.
//
// Detector is not safe for concurrent use; the tracker drives it from the
// tick routine only.
type Detector struct {
	threshold float64
	minRun    int

	// run counts consecutive below-threshold samples of the current
	// closed-eye run. 0 means the eyes are open.
	run int
}

// NewDetector returns a Detector that counts a blink after at least minRun
// consecutive samples below threshold followed by a re-opening sample.
func NewDetector(threshold float64, minRun int) *Detector {
	return &Detector{threshold: threshold, minRun: minRun}
}

// Observe feeds one fresh averaged EAR sample into the state machine and
// reports whether a blink just completed. A run that never re-opens never
// counts — there is no flush at stream end.
func (d *Detector) Observe(avg float64) bool {
	if avg < d.threshold {
		d.run++
		return false
	}

	// Only a genuine closed-eye run can qualify: with minRun 0, an open
	// frame following another open frame is still not a blink.
	blinked := d.run > 0 && d.run >= d.minRun
	d.run = 0
	return blinked
}

// SetTuning replaces the threshold and minimum run length. The in-progress
// run counter is preserved so a reload mid-blink does not drop the run.
func (d *Detector) SetTuning(threshold float64, minRun int) {
	d.threshold = threshold
	d.minRun = minRun
}
