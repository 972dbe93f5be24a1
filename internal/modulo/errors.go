package modulo

import "errors"

// Sentinel errors for the modulo package.
var (
	// ErrModuleNotFound indicates a module ID with no corresponding row.
	ErrModuleNotFound = errors.New("modulo: module not found")

	// ErrNoResetControl indicates the module has no reset control
	// assigned; command dispatch still publishes but logs nothing.
	ErrNoResetControl = errors.New("modulo: module has no reset control")

	// ErrInvalidBeamValue indicates a beam value outside [0.0, 3.5] or
	// off the 0.5 grid.
	ErrInvalidBeamValue = errors.New("modulo: invalid beam value")

	// ErrInvalidEventType indicates a connection event type the fleet
	// does not emit.
	ErrInvalidEventType = errors.New("modulo: invalid connection event type")

	// ErrInvalidLocation indicates a location outside the four quadrants.
	ErrInvalidLocation = errors.New("modulo: invalid location")
)
