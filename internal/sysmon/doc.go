// Package sysmon polls host resource usage for the dashboard sidebar.
//
// Monitor.Run collects CPU, memory and disk samples on a fixed interval via
// gopsutil; collection failures are logged per probe and partial samples
// are still published. Last() returns a point-in-time copy.
//
// The poller runs outside the tracking pipeline and never touches pipeline
// state — it communicates with the dashboard only through snapshots.
package sysmon
