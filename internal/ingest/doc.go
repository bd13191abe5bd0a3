// Package ingest consumes sensor measurements published over MQTT and
// appends them to the measurement store.
//
// Sensors publish JSON payloads to <prefix>/sensor/<device-id>/measurement;
// the device id is taken from the topic, never from the payload. Malformed
// messages are logged and dropped so one bad publisher cannot stall the
// ingest loop.
package ingest
