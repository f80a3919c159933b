// Package metrics exposes the pipeline counters in Prometheus text
// exposition format on GET /metrics.
//
// Handler rebuilds the metric families from the live tracker and monitor
// state on every scrape — there is no registry to keep in sync with the
// pipeline. Exposed families:
//
//	blinkwatch_blinks_total             blinks detected since startup
//	blinkwatch_frames_processed_total   ticks that ran detection
//	blinkwatch_frames_skipped_total     ticks elided by the skip policy
//	blinkwatch_no_detection_total       processed ticks without a face
//	blinkwatch_provider_failures_total  provider errors
//	blinkwatch_ear_faults_total         detections with bad geometry
//	blinkwatch_alerts_fired_total       low blink rate alerts delivered
//	blinkwatch_{avg,left,right}_ear     latest fresh EAR samples (gauges)
package metrics
