// Package analytics provides read-only aggregation queries over the
// measurement time series, joined against room and device metadata.
//
// The queries run directly against SQL and do not touch the in-memory
// house graph, so they stay correct as measurements accumulate after
// the structure was loaded.
package analytics
