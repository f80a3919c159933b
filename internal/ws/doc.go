// Package ws streams live eye-tracking state to dashboard clients over
// WebSocket.
//
// New(snapshot, interval) creates a Hub that calls the SnapshotFunc at each
// broadcast tick. Hub.Run(ctx) drives the ticker — blocks until ctx is
// cancelled, then closes all connections. Hub.ServeHTTP upgrades the
// connection, pushes the current state immediately so the dashboard renders
// without waiting for the next tick, then streams updates.
//
// Message format sent to clients:
//
//	{
//	  "event": "tracking",
//	  "data":  { /* SnapshotFunc payload */ }
//	}
//
// Clients are read-mostly; a client whose send buffer fills is disconnected
// rather than queued for. The upgrader accepts all origins — dashboard
// access control belongs at the reverse proxy. The endpoint is mounted at
// /ws/stream by the daemon.
package ws
