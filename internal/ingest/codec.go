package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modulo-iot/modulocore/internal/modulo"
)

// Decoded message variants. Optional payload fields are pointers so the
// handlers can distinguish "absent" from a zero value.

// MeasurementMessage is a decoded temperature/pressure reading.
type MeasurementMessage struct {
	ModuleID    int64
	Temperature *float64
	Pressure    *float64
}

// BeamUpdateMessage is a decoded beam position report. The expected,
// actual and per-axis status fields are only present in the extended
// payload form.
type BeamUpdateMessage struct {
	ModuleID int64
	Up       float64
	Down     float64

	UpExpected   *float64
	DownExpected *float64
	UpActual     *float64
	DownActual   *float64
	UpStatus     *string
	DownStatus   *string
}

// ConnectionEventMessage is a decoded connection lifecycle event.
type ConnectionEventMessage struct {
	ModuleID          int64
	Event             modulo.EventType
	DisconnectSeconds *int64
	Detail            string
}

// TechInfoMessage is a decoded heartbeat or tech-info payload: a module
// ID plus a partial technical metadata update.
type TechInfoMessage struct {
	ModuleID int64
	Update   modulo.TechInfoUpdate
}

// Wire structs carry both the English keys and the legacy Spanish keys
// older firmware still publishes. first() picks whichever is present.

type measurementWire struct {
	ModuleID    *int64   `json:"moduleId"`
	ModuloID    *int64   `json:"moduloId"`
	Temperature *float64 `json:"temperature"`
	Temperatura *float64 `json:"temperatura"`
	Pressure    *float64 `json:"pressure"`
	Presion     *float64 `json:"presion"`
}

type beamUpdateWire struct {
	ModuleID *int64 `json:"moduleId"`
	ModuloID *int64 `json:"moduloId"`

	Up   *float64 `json:"up"`
	Down *float64 `json:"down"`

	UpExpected   *float64 `json:"upExpected"`
	DownExpected *float64 `json:"downExpected"`
	UpActual     *float64 `json:"upActual"`
	DownActual   *float64 `json:"downActual"`
	EstadoUp     *string  `json:"estadoUp"`
	EstadoDown   *string  `json:"estadoDown"`
}

type connectionEventWire struct {
	ModuleID *int64 `json:"moduleId"`
	ModuloID *int64 `json:"moduloId"`

	Event  *string `json:"event"`
	Evento *string `json:"evento"`

	DisconnectSeconds *int64 `json:"disconnectSeconds"`

	Details  *string `json:"details"`
	Detalles *string `json:"detalles"`
}

type techInfoWire struct {
	ModuleID *int64 `json:"moduleId"`
	ModuloID *int64 `json:"moduloId"`

	Firmware *string `json:"firmware"`
	IP       *string `json:"ip"`
	MAC      *string `json:"mac"`
	Uptime   *int64  `json:"uptime"`

	Memoria *int64 `json:"memoria"`
	Memory  *int64 `json:"memory"`

	Temperatura  *float64 `json:"temperatura"`
	InternalTemp *float64 `json:"internalTemp"`

	Voltaje *float64 `json:"voltaje"`
	Voltage *float64 `json:"voltage"`

	Signal *int64 `json:"signal"`
}

func firstI64(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstF64(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstStr(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// DecodeMeasurement decodes a measurement payload. At least one of
// temperature/pressure is required.
func DecodeMeasurement(payload []byte) (*MeasurementMessage, error) {
	var wire measurementWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	id := firstI64(wire.ModuleID, wire.ModuloID)
	if id == nil {
		return nil, fmt.Errorf("%w: missing moduleId", ErrValidation)
	}

	msg := &MeasurementMessage{
		ModuleID:    *id,
		Temperature: firstF64(wire.Temperature, wire.Temperatura),
		Pressure:    firstF64(wire.Pressure, wire.Presion),
	}
	if msg.Temperature == nil && msg.Pressure == nil {
		return nil, fmt.Errorf("%w: measurement requires temperature or pressure", ErrValidation)
	}
	return msg, nil
}

// DecodeBeamUpdate decodes a beam position payload, simple or extended
// form. Values are range-checked against the actuator grid.
func DecodeBeamUpdate(payload []byte) (*BeamUpdateMessage, error) {
	var wire beamUpdateWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	id := firstI64(wire.ModuleID, wire.ModuloID)
	if id == nil {
		return nil, fmt.Errorf("%w: missing moduleId", ErrValidation)
	}
	if wire.Up == nil || wire.Down == nil {
		return nil, fmt.Errorf("%w: beam update requires up and down", ErrValidation)
	}
	if err := modulo.ValidateBeamPair(*wire.Up, *wire.Down); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return &BeamUpdateMessage{
		ModuleID:     *id,
		Up:           *wire.Up,
		Down:         *wire.Down,
		UpExpected:   wire.UpExpected,
		DownExpected: wire.DownExpected,
		UpActual:     wire.UpActual,
		DownActual:   wire.DownActual,
		UpStatus:     wire.EstadoUp,
		DownStatus:   wire.EstadoDown,
	}, nil
}

// DecodeConnectionEvent decodes a connection lifecycle payload. The
// event type is upper-cased before validation so "online" and "ONLINE"
// both pass.
func DecodeConnectionEvent(payload []byte) (*ConnectionEventMessage, error) {
	var wire connectionEventWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	id := firstI64(wire.ModuleID, wire.ModuloID)
	if id == nil {
		return nil, fmt.Errorf("%w: missing moduleId", ErrValidation)
	}
	event := firstStr(wire.Event, wire.Evento)
	if event == nil {
		return nil, fmt.Errorf("%w: missing event type", ErrValidation)
	}
	eventType, err := modulo.ParseEventType(strings.ToUpper(*event))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	msg := &ConnectionEventMessage{
		ModuleID:          *id,
		Event:             eventType,
		DisconnectSeconds: wire.DisconnectSeconds,
	}
	if detail := firstStr(wire.Details, wire.Detalles); detail != nil {
		msg.Detail = *detail
	}
	return msg, nil
}

// DecodeTechInfo decodes a heartbeat or tech-info payload into a partial
// metadata update. Every field except moduleId is optional; absent
// fields are retained downstream, never cleared.
func DecodeTechInfo(payload []byte) (*TechInfoMessage, error) {
	var wire techInfoWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	id := firstI64(wire.ModuleID, wire.ModuloID)
	if id == nil {
		return nil, fmt.Errorf("%w: missing moduleId", ErrValidation)
	}

	return &TechInfoMessage{
		ModuleID: *id,
		Update: modulo.TechInfoUpdate{
			Firmware:       wire.Firmware,
			IPAddress:      wire.IP,
			MACAddress:     wire.MAC,
			UptimeSeconds:  wire.Uptime,
			FreeMemory:     firstI64(wire.Memoria, wire.Memory),
			InternalTemp:   firstF64(wire.Temperatura, wire.InternalTemp),
			SupplyVoltage:  firstF64(wire.Voltaje, wire.Voltage),
			SignalStrength: wire.Signal,
		},
	}, nil
}
