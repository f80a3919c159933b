// Package api serves the JSON control surface of blinkwatchd.
//
// New(tracker, monitor, alerts, stats) returns an http.Handler that serves:
//
//	GET  /api/v1/health    — status, uptime, current blink count
//	GET  /api/v1/snapshot  — full live state: tracking snapshot, pipeline
//	                         counters, system stats
//	GET  /api/v1/alerts    — recent fired alerts, newest first
//	POST /api/v1/reset     — reinitialize the rate window and cooldown
//
// All endpoints respond with Content-Type: application/json and return 405
// for unsupported methods. No external HTTP framework is used.
package api
