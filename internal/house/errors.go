package house

import "errors"

var (
	// ErrEmptyStructure is returned by the Loader when the rooms table is
	// empty: with no rooms there is no floor count to derive, and an empty
	// house is a storage fault rather than a valid state.
	ErrEmptyStructure = errors.New("no rooms in storage: cannot derive floors")

	// ErrDanglingReference is returned when a device row references a room
	// id that does not exist. Referential-integrity violations are fatal to
	// loading, never silently dropped.
	ErrDanglingReference = errors.New("device references unknown room")

	// ErrUnknownDevice is returned when a device id does not resolve.
	ErrUnknownDevice = errors.New("device not found")
)
