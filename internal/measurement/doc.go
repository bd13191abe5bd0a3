// Package measurement provides the append-only sensor time series.
//
// Measurements are immutable facts (device id, value, unit, timestamp)
// ordered by timestamp with the SQLite rowid as the deterministic
// tie-break for equal timestamps. The store does not verify that the
// device id exists; validating device existence is the caller's job.
package measurement
