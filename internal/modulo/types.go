package modulo

import "time"

// Location is the quadrant a module is installed in.
type Location string

// Module locations. The four quadrant labels are fixed by the deployment.
const (
	LocationNorth Location = "north"
	LocationSouth Location = "south"
	LocationEast  Location = "east"
	LocationWest  Location = "west"
)

// Valid reports whether the location is one of the four quadrants.
func (l Location) Valid() bool {
	switch l {
	case LocationNorth, LocationSouth, LocationEast, LocationWest:
		return true
	}
	return false
}

// EventType classifies a connection lifecycle event.
//
// The wire values are fixed by the module firmware; RECONEXION is the
// legacy Spanish spelling the fleet reports for reconnects.
type EventType string

// Connection event types.
const (
	EventOnline    EventType = "ONLINE"
	EventOffline   EventType = "OFFLINE"
	EventTimeout   EventType = "TIMEOUT"
	EventReconnect EventType = "RECONEXION"
)

// Valid reports whether the event type is one the fleet emits.
func (e EventType) Valid() bool {
	switch e {
	case EventOnline, EventOffline, EventTimeout, EventReconnect:
		return true
	}
	return false
}

// Module represents a field-deployed IoT unit reporting temperature,
// pressure and beam-position telemetry.
//
// Modules are provisioned by the dashboard; the core never creates or
// deletes them. The core mutates only the live beam values (BeamUpdate
// handler) and the technical metadata snapshot (Heartbeat/TechInfo
// handlers).
type Module struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Location        Location  `json:"location"`
	HardwareVersion string    `json:"hardware_version"`

	// Up and Down are the live beam position values, always within
	// [0.0, 3.5] on the 0.5 grid. Last write wins.
	Up   float64 `json:"up"`
	Down float64 `json:"down"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Measurement is an immutable temperature/pressure reading.
// Either value may be absent, never both.
type Measurement struct {
	ID          int64      `json:"id"`
	ModuleID    int64      `json:"module_id"`
	Temperature *float64   `json:"temperature,omitempty"`
	Pressure    *float64   `json:"pressure,omitempty"`
	RecordedAt  time.Time  `json:"recorded_at"`
}

// BeamRecord is an immutable beam position history row.
//
// The expected/actual fields and per-axis status strings are present only
// when the module sent the extended payload form; a status of "mismatch"
// on either axis downgrades the module's connectivity classification.
type BeamRecord struct {
	ID       int64 `json:"id"`
	ModuleID int64 `json:"module_id"`

	Up   float64 `json:"up"`
	Down float64 `json:"down"`

	UpExpected   *float64 `json:"up_expected,omitempty"`
	DownExpected *float64 `json:"down_expected,omitempty"`
	UpActual     *float64 `json:"up_actual,omitempty"`
	DownActual   *float64 `json:"down_actual,omitempty"`
	UpStatus     *string  `json:"up_status,omitempty"`
	DownStatus   *string  `json:"down_status,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// BeamStatusMismatch is the per-axis status value reporting that a
// module's actual beam position diverged from the expected one.
const BeamStatusMismatch = "mismatch"

// HasMismatch reports whether either axis carries a mismatch status.
func (b *BeamRecord) HasMismatch() bool {
	if b == nil {
		return false
	}
	if b.UpStatus != nil && *b.UpStatus == BeamStatusMismatch {
		return true
	}
	if b.DownStatus != nil && *b.DownStatus == BeamStatusMismatch {
		return true
	}
	return false
}

// ConnectionEvent is an immutable connection lifecycle record.
// Events may arrive out of order; they are stored verbatim.
type ConnectionEvent struct {
	ID                int64     `json:"id"`
	ModuleID          int64     `json:"module_id"`
	EventType         EventType `json:"event_type"`
	DisconnectSeconds *int64    `json:"disconnect_seconds,omitempty"`
	Detail            string    `json:"detail,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// TechInfoSnapshot holds a module's technical metadata.
//
// At most one snapshot per module is active and represents current state;
// TechInfo messages additionally append inactive history rows.
type TechInfoSnapshot struct {
	ID       int64 `json:"id"`
	ModuleID int64 `json:"module_id"`

	Firmware       *string  `json:"firmware,omitempty"`
	IPAddress      *string  `json:"ip_address,omitempty"`
	MACAddress     *string  `json:"mac_address,omitempty"`
	UptimeSeconds  *int64   `json:"uptime_seconds,omitempty"`
	FreeMemory     *int64   `json:"free_memory,omitempty"`
	InternalTemp   *float64 `json:"internal_temp,omitempty"`
	SupplyVoltage  *float64 `json:"supply_voltage,omitempty"`
	SignalStrength *int64   `json:"signal_strength,omitempty"`

	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TechInfoUpdate is a partial update to a module's technical metadata.
// Only non-nil fields overwrite the destination; absent fields are
// retained, never cleared.
type TechInfoUpdate struct {
	Firmware       *string
	IPAddress      *string
	MACAddress     *string
	UptimeSeconds  *int64
	FreeMemory     *int64
	InternalTemp   *float64
	SupplyVoltage  *float64
	SignalStrength *int64
}

// Apply merges the update into the snapshot, overwriting only the fields
// present in the update.
func (u TechInfoUpdate) Apply(s *TechInfoSnapshot) {
	if u.Firmware != nil {
		s.Firmware = u.Firmware
	}
	if u.IPAddress != nil {
		s.IPAddress = u.IPAddress
	}
	if u.MACAddress != nil {
		s.MACAddress = u.MACAddress
	}
	if u.UptimeSeconds != nil {
		s.UptimeSeconds = u.UptimeSeconds
	}
	if u.FreeMemory != nil {
		s.FreeMemory = u.FreeMemory
	}
	if u.InternalTemp != nil {
		s.InternalTemp = u.InternalTemp
	}
	if u.SupplyVoltage != nil {
		s.SupplyVoltage = u.SupplyVoltage
	}
	if u.SignalStrength != nil {
		s.SignalStrength = u.SignalStrength
	}
}

// IsEmpty reports whether the update carries no fields at all.
func (u TechInfoUpdate) IsEmpty() bool {
	return u.Firmware == nil && u.IPAddress == nil && u.MACAddress == nil &&
		u.UptimeSeconds == nil && u.FreeMemory == nil && u.InternalTemp == nil &&
		u.SupplyVoltage == nil && u.SignalStrength == nil
}

// ResetControl is the hardware reset line assigned to a module.
type ResetControl struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	ModuleID *int64 `json:"module_id,omitempty"`
}

// ResetLog records one issued control command. Append-only.
type ResetLog struct {
	ID             int64     `json:"id"`
	ResetControlID int64     `json:"reset_control_id"`
	Performed      bool      `json:"performed"`
	CreatedAt      time.Time `json:"created_at"`
}
