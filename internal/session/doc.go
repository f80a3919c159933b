// Package session reports the finished tracking session to the external
// backend.
//
// New(cfg) returns a Reporter, or nil when no backend URL is configured so
// callers can skip reporting entirely. Report POSTs
//
//	{ "session_start_time": ..., "session_end_time": ..., "total_blinks": ... }
//
// to {backend_url}/sessions with an optional bearer token resolved from the
// environment. The pipeline only exposes its blink counter; everything else
// about persistence lives behind the backend's REST API. A lost summary is
// returned as an error for the caller to log and must never block shutdown.
package session
