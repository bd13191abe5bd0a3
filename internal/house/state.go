package house

// Mode enumerates the actuator state machine.
type Mode int

const (
	// ModeOff is the resting state. Persisted as NULL.
	ModeOff Mode = iota

	// ModeOn is on without a level. Persisted as exactly 1.0.
	ModeOn

	// ModeOnWithLevel is on at a specific level. Persisted as the level value.
	ModeOnWithLevel
)

// String returns the human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeOn:
		return "on"
	case ModeOnWithLevel:
		return "on_with_level"
	default:
		return "unknown"
	}
}

// ActuatorState is the controllable state of an actuator.
// Level is meaningful only when Mode is ModeOnWithLevel.
type ActuatorState struct {
	Mode  Mode    `json:"mode"`
	Level float64 `json:"level,omitempty"`
}

// DecodeState maps a raw stored state to the actuator state machine.
//
// The mapping is: absent (nil) means off, exactly 1.0 means on, any other
// numeric value v means on with level v. The comparison is exact equality,
// not a threshold: 0.999 decodes to on-with-level 0.999, not to on.
func DecodeState(raw *float64) ActuatorState {
	switch {
	case raw == nil:
		return ActuatorState{Mode: ModeOff}
	case *raw == 1.0:
		return ActuatorState{Mode: ModeOn}
	default:
		return ActuatorState{Mode: ModeOnWithLevel, Level: *raw}
	}
}

// EncodeState is the exact inverse of DecodeState, used when persisting
// actuator state writes.
func EncodeState(s ActuatorState) *float64 {
	switch s.Mode {
	case ModeOn:
		v := 1.0
		return &v
	case ModeOnWithLevel:
		v := s.Level
		return &v
	default:
		return nil
	}
}
