package house

import (
	"context"
	"database/sql"
	"fmt"
)

// Logger is the logging interface used by the Loader.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Loader reconstructs the full SmartHouse graph from the relational tables.
//
// Loading reads storage only; it never mutates it. Re-running a load against
// unchanged storage produces an equivalent graph (a fresh instance, not the
// same one).
type Loader struct {
	db     *sql.DB
	states *StateRepository
	logger Logger
}

// NewLoader creates a structure loader over the given connection.
func NewLoader(db *sql.DB) *Loader {
	return &Loader{
		db:     db,
		states: NewStateRepository(db),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the loader.
func (l *Loader) SetLogger(logger Logger) {
	l.logger = logger
}

// LoadStructure performs the deep load:
//
//  1. Derive the floor count N from MAX(floor) over rooms; an empty rooms
//     table fails with ErrEmptyStructure.
//  2. Register floors 1..N in ascending order, including levels that have
//     no rooms.
//  3. Register each room under its floor, indexed by storage id.
//  4. Register each device under its room, selecting the variant from
//     (category, kind). A device row referencing an unknown room id fails
//     with ErrDanglingReference.
//  5. Decode the persisted state of every actuator-capable device. A
//     device without a state row stays off; that is logged, not an error.
func (l *Loader) LoadStructure(ctx context.Context) (*SmartHouse, error) {
	house := NewSmartHouse()

	floors, err := l.registerFloors(ctx, house)
	if err != nil {
		return nil, err
	}

	roomsByDBID, err := l.registerRooms(ctx, house, floors)
	if err != nil {
		return nil, err
	}

	if err := l.registerDevices(ctx, house, roomsByDBID); err != nil {
		return nil, err
	}

	if err := l.loadActuatorStates(ctx, house); err != nil {
		return nil, err
	}

	return house, nil
}

// registerFloors derives the floor count and registers floors 1..N.
func (l *Loader) registerFloors(ctx context.Context, house *SmartHouse) ([]*Floor, error) {
	var maxFloor sql.NullInt64
	err := l.db.QueryRowContext(ctx, "SELECT MAX(floor) FROM rooms").Scan(&maxFloor)
	if err != nil {
		return nil, fmt.Errorf("querying floor count: %w", err)
	}
	if !maxFloor.Valid || maxFloor.Int64 < 1 {
		return nil, ErrEmptyStructure
	}

	floors := make([]*Floor, 0, maxFloor.Int64)
	for level := 1; level <= int(maxFloor.Int64); level++ {
		floors = append(floors, house.RegisterFloor(level))
	}
	return floors, nil
}

// registerRooms loads all room rows and indexes them by storage id for
// device attachment.
func (l *Loader) registerRooms(ctx context.Context, house *SmartHouse, floors []*Floor) (map[int64]*Room, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT id, floor, area, name FROM rooms")
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	roomsByDBID := make(map[int64]*Room)
	for rows.Next() {
		var (
			id    int64
			floor int
			area  float64
			name  string
		)
		if err := rows.Scan(&id, &floor, &area, &name); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		if floor < 1 || floor > len(floors) {
			return nil, fmt.Errorf("room %q has floor %d outside 1..%d", name, floor, len(floors))
		}

		room := house.RegisterRoom(floors[floor-1], area, name)
		room.dbID = id
		roomsByDBID[id] = room
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return roomsByDBID, nil
}

// registerDevices loads all device rows and attaches them to their rooms.
func (l *Loader) registerDevices(ctx context.Context, house *SmartHouse, roomsByDBID map[int64]*Room) error {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, room, kind, category, supplier, product FROM devices")
	if err != nil {
		return fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, kind, category, supplier, product string
			roomID                                int64
		)
		if err := rows.Scan(&id, &roomID, &kind, &category, &supplier, &product); err != nil {
			return fmt.Errorf("scanning device row: %w", err)
		}

		room, ok := roomsByDBID[roomID]
		if !ok {
			return fmt.Errorf("%w: device %s references room id %d", ErrDanglingReference, id, roomID)
		}

		house.RegisterDevice(room, &Device{
			ID:       id,
			Model:    product,
			Supplier: supplier,
			Kind:     kind,
			Variant:  variantFor(category, kind),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating device rows: %w", err)
	}
	return nil
}

// variantFor selects the device variant from the stored taxonomy.
// Heat pumps are the one actuator kind that also senses.
func variantFor(category, kind string) Variant {
	if category == CategoryActuator {
		if kind == KindHeatPump {
			return VariantActuatorWithSensor
		}
		return VariantActuator
	}
	return VariantSensor
}

// loadActuatorStates decodes the persisted state of every actuator-capable
// device. The lookup is parameterized per device id.
func (l *Loader) loadActuatorStates(ctx context.Context, house *SmartHouse) error {
	for _, dev := range house.Devices() {
		if !dev.IsActuator() {
			continue
		}

		raw, found, err := l.states.Get(ctx, dev.ID)
		if err != nil {
			return fmt.Errorf("loading state for device %s: %w", dev.ID, err)
		}
		if !found {
			// Off is the pinned default for a device with no state row.
			l.logger.Warn("no persisted state for actuator, defaulting to off", "device_id", dev.ID)
			dev.State = ActuatorState{Mode: ModeOff}
			continue
		}
		dev.State = DecodeState(raw)
	}
	return nil
}
