// Package alertlog keeps a bounded in-memory history of fired health
// alerts, backing the JSON API and the dashboard stream.
//
// Log.Append records a fired alert, evicting the oldest entry when the
// bound is reached; Recent returns newest-first copies. History lives only
// for the current process; persistence belongs to the session backend.
package alertlog
