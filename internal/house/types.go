package house

// Device kind labels with hard-coded taxonomy meaning.
const (
	// KindHeatPump marks the one actuator kind that also senses: heat pumps
	// report their own temperature while holding a controllable state.
	KindHeatPump = "Heat Pump"

	// KindHumiditySensor identifies the devices feeding the humidity
	// anomaly query.
	KindHumiditySensor = "Humidity Sensor"
)

// Device category values as stored in the devices table.
const (
	CategorySensor   = "sensor"
	CategoryActuator = "actuator"
)

// Variant is the closed set of device variants.
//
// ActuatorWithSensor needs both capabilities at once, so the model uses a
// tagged variant with capability predicates instead of a type hierarchy.
type Variant int

const (
	// VariantSensor produces measurements only.
	VariantSensor Variant = iota

	// VariantActuator holds controllable state only.
	VariantActuator

	// VariantActuatorWithSensor both produces measurements and holds state.
	VariantActuatorWithSensor
)

// String returns the human-readable variant name.
func (v Variant) String() string {
	switch v {
	case VariantSensor:
		return "sensor"
	case VariantActuator:
		return "actuator"
	case VariantActuatorWithSensor:
		return "actuator_with_sensor"
	default:
		return "unknown"
	}
}

// Device represents a sensor or actuator installed in a room.
type Device struct {
	// ID is the globally unique device identifier.
	ID string `json:"id"`

	// Model is the product/model name.
	Model string `json:"model"`

	// Supplier is the device manufacturer.
	Supplier string `json:"supplier"`

	// Kind is the device category label (e.g. "Temperature Sensor",
	// "Heat Pump").
	Kind string `json:"kind"`

	// Variant selects the capability set.
	Variant Variant `json:"variant"`

	// State is the actuator state. Meaningful only when IsActuator()
	// reports true; sensors keep the zero value (off).
	State ActuatorState `json:"state,omitempty"`
}

// IsSensor reports whether the device produces measurements.
func (d *Device) IsSensor() bool {
	return d.Variant == VariantSensor || d.Variant == VariantActuatorWithSensor
}

// IsActuator reports whether the device holds controllable state.
func (d *Device) IsActuator() bool {
	return d.Variant == VariantActuator || d.Variant == VariantActuatorWithSensor
}

// TurnOff moves the actuator to the off state.
// Any state may move to any other state; no transition is rejected.
func (d *Device) TurnOff() {
	d.State = ActuatorState{Mode: ModeOff}
}

// TurnOn moves the actuator to the plain on state (no level).
func (d *Device) TurnOn() {
	d.State = ActuatorState{Mode: ModeOn}
}

// TurnOnWithLevel moves the actuator to the on state with the given level.
func (d *Device) TurnOnWithLevel(level float64) {
	d.State = ActuatorState{Mode: ModeOnWithLevel, Level: level}
}

// Room is a physical space on a floor.
type Room struct {
	// Name is the human-readable room name, unique across the whole house.
	// It is the correlation key for the aggregation queries.
	Name string `json:"name"`

	// Area is the floor-relative room area.
	Area float64 `json:"area"`

	// Devices are the devices installed in this room.
	Devices []*Device `json:"devices"`

	// dbID is the storage row id, used only to attach devices during
	// loading. Not meaningful afterwards.
	dbID int64
}

// Floor is one level of the house, numbered from 1.
type Floor struct {
	// Level is the 1-based floor number. Identity = level.
	Level int `json:"level"`

	// Rooms are the rooms on this floor.
	Rooms []*Room `json:"rooms"`
}

// SmartHouse is the aggregate root owning the full Floor/Room/Device tree.
//
// It is created once per process by the Loader; the register methods are
// only called during loading.
type SmartHouse struct {
	floors  []*Floor
	rooms   map[string]*Room   // by name
	devices map[string]*Device // by id
}

// NewSmartHouse creates an empty house ready for registration.
func NewSmartHouse() *SmartHouse {
	return &SmartHouse{
		rooms:   make(map[string]*Room),
		devices: make(map[string]*Device),
	}
}

// RegisterFloor appends a floor with the given level and returns it.
// The Loader calls this in ascending order so floors stay sorted.
func (h *SmartHouse) RegisterFloor(level int) *Floor {
	f := &Floor{Level: level}
	h.floors = append(h.floors, f)
	return f
}

// RegisterRoom creates a room under the given floor and returns it.
func (h *SmartHouse) RegisterRoom(floor *Floor, area float64, name string) *Room {
	r := &Room{Name: name, Area: area}
	floor.Rooms = append(floor.Rooms, r)
	h.rooms[name] = r
	return r
}

// RegisterDevice attaches a device to the given room.
func (h *SmartHouse) RegisterDevice(room *Room, d *Device) {
	room.Devices = append(room.Devices, d)
	h.devices[d.ID] = d
}

// Floors returns the floors in ascending level order.
func (h *SmartHouse) Floors() []*Floor {
	return h.floors
}

// FloorByLevel returns the floor with the given level, or nil.
func (h *SmartHouse) FloorByLevel(level int) *Floor {
	for _, f := range h.floors {
		if f.Level == level {
			return f
		}
	}
	return nil
}

// Rooms returns all rooms across all floors.
func (h *SmartHouse) Rooms() []*Room {
	var rooms []*Room
	for _, f := range h.floors {
		rooms = append(rooms, f.Rooms...)
	}
	return rooms
}

// RoomByName returns the room with the given name, or nil.
func (h *SmartHouse) RoomByName(name string) *Room {
	return h.rooms[name]
}

// Devices returns all devices across all rooms.
func (h *SmartHouse) Devices() []*Device {
	var devices []*Device
	for _, f := range h.floors {
		for _, r := range f.Rooms {
			devices = append(devices, r.Devices...)
		}
	}
	return devices
}

// DeviceByID returns the device with the given id, or nil.
func (h *SmartHouse) DeviceByID(id string) *Device {
	return h.devices[id]
}

// TotalArea returns the summed area of all rooms.
func (h *SmartHouse) TotalArea() float64 {
	var total float64
	for _, r := range h.Rooms() {
		total += r.Area
	}
	return total
}
