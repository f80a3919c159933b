package tracker

import "testing"

// countBlinks runs a sample sequence through a fresh Detector and returns
// the number of completed blinks.
func countBlinks(threshold float64, minRun int, samples []float64) int {
	d := NewDetector(threshold, minRun)
	n := 0
	for _, s := range samples {
		if d.Observe(s) {
			n++
		}
	}
	return n
}

func TestDetector_RunCounting(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		minRun    int
		samples   []float64
		want      int
	}{
		{
			// One run of length 2 qualifies; the lone dip does not.
			name:      "one qualifying run among dips",
			threshold: 0.21,
			minRun:    2,
			samples:   []float64{0.25, 0.15, 0.10, 0.30, 0.05, 0.30},
			want:      1,
		},
		{
			name:      "run of exactly minRun counts",
			threshold: 0.21,
			minRun:    3,
			samples:   []float64{0.30, 0.10, 0.10, 0.10, 0.30},
			want:      1,
		},
		{
			name:      "run of minRun-1 does not count",
			threshold: 0.21,
			minRun:    3,
			samples:   []float64{0.30, 0.10, 0.10, 0.30},
			want:      0,
		},
		{
			name:      "two separate qualifying runs",
			threshold: 0.21,
			minRun:    2,
			samples:   []float64{0.10, 0.10, 0.30, 0.10, 0.10, 0.10, 0.30},
			want:      2,
		},
		{
			name:      "all open",
			threshold: 0.21,
			minRun:    2,
			samples:   []float64{0.30, 0.28, 0.31, 0.29},
			want:      0,
		},
		{
			name:      "run that never re-opens is not flushed",
			threshold: 0.21,
			minRun:    2,
			samples:   []float64{0.30, 0.10, 0.10, 0.10},
			want:      0,
		},
		{
			name:      "boundary sample at threshold counts as open",
			threshold: 0.21,
			minRun:    1,
			samples:   []float64{0.21, 0.20, 0.21},
			want:      1,
		},
		{
			name:      "minRun zero still needs a real run",
			threshold: 0.21,
			minRun:    0,
			samples:   []float64{0.30, 0.30, 0.10, 0.30},
			want:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countBlinks(tt.threshold, tt.minRun, tt.samples)
			if got != tt.want {
				t.Errorf("blinks = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetector_SetTuningKeepsRun(t *testing.T) {
	d := NewDetector(0.21, 3)
	d.Observe(0.10)
	d.Observe(0.10)

	// Lowering the run requirement mid-blink keeps the in-progress run.
	d.SetTuning(0.21, 2)
	if !d.Observe(0.30) {
		t.Error("run of 2 should qualify after tuning lowered minRun to 2")
	}
}
