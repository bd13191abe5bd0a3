// Package influxdb mirrors appended measurements into an InfluxDB v2
// bucket for dashboards and long-range queries.
//
// The mirror is optional and strictly secondary: SQLite remains the
// system of record, and a failed or slow mirror write never blocks or
// fails the primary append. Writes are batched and flushed
// asynchronously by the non-blocking write API.
package influxdb
