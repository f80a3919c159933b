package metrics

import (
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/blinkwatch/blinkwatch/internal/monitor"
	"github.com/blinkwatch/blinkwatch/internal/tracker"
)

// Handler serves the metrics endpoint. Families are rebuilt from the live
// tracker and monitor state on every scrape; there is no registry to keep in
// sync with the pipeline.
type Handler struct {
	tracker *tracker.Tracker
	monitor *monitor.Monitor
}

// New creates a Handler reading from trk and mon.
func New(trk *tracker.Tracker, mon *monitor.Monitor) *Handler {
	return &Handler{tracker: trk, monitor: mon}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.tracker.Snapshot()
	stats := h.tracker.Stats()

	families := []*dto.MetricFamily{
		counter("blinkwatch_blinks_total",
			"Total blinks detected since startup.",
			float64(snap.BlinkCount)),
		counter("blinkwatch_frames_processed_total",
			"Ticks that ran landmark detection.",
			float64(stats.FramesProcessed)),
		counter("blinkwatch_frames_skipped_total",
			"Ticks elided by the frame-skip policy.",
			float64(stats.FramesSkipped)),
		counter("blinkwatch_no_detection_total",
			"Processed ticks where no face was found.",
			float64(stats.NoDetections)),
		counter("blinkwatch_provider_failures_total",
			"Processed ticks where the landmark provider errored.",
			float64(stats.ProviderFailures)),
		counter("blinkwatch_ear_faults_total",
			"Detections discarded for invalid or degenerate eye geometry.",
			float64(stats.EARFaults)),
		counter("blinkwatch_alerts_fired_total",
			"Low blink rate alerts raised.",
			float64(h.monitor.AlertsFired())),
		gauge("blinkwatch_avg_ear",
			"Averaged eye-aspect-ratio of the latest fresh sample.",
			snap.AvgEAR),
		gauge("blinkwatch_left_ear",
			"Left-eye EAR of the latest fresh sample.",
			snap.LeftEAR),
		gauge("blinkwatch_right_ear",
			"Right-eye EAR of the latest fresh sample.",
			snap.RightEAR),
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			slog.Error("metrics: encode family", "family", mf.GetName(), "err", err)
			return
		}
	}
}

func counter(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{
			Counter: &dto.Counter{Value: proto.Float64(value)},
		}},
	}
}

func gauge(name, help string, value float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Gauge: &dto.Gauge{Value: proto.Float64(value)},
		}},
	}
}
