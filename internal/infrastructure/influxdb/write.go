package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteMeasurement mirrors a single sensor measurement.
//
// Satisfies the facade's mirror interface: the write is non-blocking,
// batched, and silently dropped when the client is not connected, so the
// primary SQLite append never waits on the mirror.
func (c *Client) WriteMeasurement(deviceID string, value float64, unit string, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_data",
		map[string]string{
			"device_id": deviceID,
			"unit":      unit,
		},
		map[string]interface{}{
			"value": value,
		},
		ts,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields,
// timestamped now. For data that does not fit the measurement shape.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
