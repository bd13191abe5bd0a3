// Package smarthome is the persistence facade of the module.
//
// A Repository owns the database connection and composes the structure
// loader, the actuator state repository, the measurement store and the
// analytics engine behind one coherent surface. Callers (the HTTP API,
// the MQTT ingest path, tooling) depend on the Repository only; the
// underlying packages stay internal wiring.
//
// The Repository caches the loaded house graph and keeps it consistent
// with storage for the writes it performs itself: writing an actuator
// state through the facade updates both the states table and the
// in-memory device.
package smarthome
