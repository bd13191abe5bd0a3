// Package house provides the smart-house structural model and its SQLite
// persistence.
//
// The model is a single-rooted tree: a SmartHouse owns Floors (numbered
// 1..N), Floors own Rooms, Rooms own Devices. Devices are a closed variant
// type over sensors, actuators and actuators with an embedded sensor (heat
// pumps). Actuators carry a three-state machine (off, on, on-with-level)
// whose persisted encoding is a single nullable numeric column.
//
// The Loader reconstructs the full graph from the rooms, devices and states
// tables in one pass ("deep load"). The StateRepository reads and writes the
// raw encoded actuator state.
//
// # Thread Safety
//
// A SmartHouse is built once by the Loader and is read-only afterwards
// except through Device state mutators, which callers must serialize
// themselves. The repositories are safe for concurrent use.
package house
