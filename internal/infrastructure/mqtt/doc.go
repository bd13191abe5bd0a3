// Package mqtt wraps paho.mqtt.golang for the measurement ingest path.
//
// The client manages connection state, restores subscriptions after a
// reconnect, and recovers from handler panics so one malformed message
// cannot take the ingest loop down. Publishing is limited to the retained
// online/offline status message; this module consumes measurements, it
// does not command devices over MQTT.
package mqtt
