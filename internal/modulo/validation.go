package modulo

import (
	"fmt"
	"math"
)

const (
	beamMin  = 0.0
	beamMax  = 3.5
	beamStep = 0.5
)

// ValidBeamValue reports whether v lies within [0.0, 3.5] on the 0.5
// grid the actuators support.
func ValidBeamValue(v float64) bool {
	if v < beamMin || v > beamMax {
		return false
	}
	// Values arrive over JSON so exact halves are representable; allow a
	// small tolerance for transit rounding.
	steps := v / beamStep
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

// ValidateBeamPair validates both axes of a beam position.
func ValidateBeamPair(up, down float64) error {
	if !ValidBeamValue(up) {
		return fmt.Errorf("%w: up=%v", ErrInvalidBeamValue, up)
	}
	if !ValidBeamValue(down) {
		return fmt.Errorf("%w: down=%v", ErrInvalidBeamValue, down)
	}
	return nil
}

// ParseEventType validates a wire event type string.
func ParseEventType(s string) (EventType, error) {
	e := EventType(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
	}
	return e, nil
}
