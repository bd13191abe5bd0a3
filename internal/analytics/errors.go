package analytics

import "errors"

// ErrUnknownRoom is returned when a room name does not resolve to a stored
// room. It is a not-found condition, distinguishable from an empty result.
var ErrUnknownRoom = errors.New("room not found")
