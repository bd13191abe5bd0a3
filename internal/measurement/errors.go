package measurement

import "errors"

// ErrNoMeasurements is returned when a device has no measurements.
// It is an absent-result condition, not a system failure.
var ErrNoMeasurements = errors.New("no measurements for device")
