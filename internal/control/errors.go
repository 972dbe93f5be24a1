package control

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel errors for the control package.
var (
	// ErrCooldownActive indicates a command was rejected because the
	// module's cooldown window has not elapsed. Match with errors.Is;
	// the concrete *CooldownError carries the remaining time.
	ErrCooldownActive = errors.New("control: cooldown active")

	// ErrEmptyAction indicates a command with no action string.
	ErrEmptyAction = errors.New("control: empty action")
)

// CooldownError reports how long until the next command is accepted.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("control: cooldown active, %ds remaining", e.SecondsRemaining())
}

// Is makes errors.Is(err, ErrCooldownActive) match.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// SecondsRemaining returns the remaining cooldown rounded up to whole
// seconds, never less than one.
func (e *CooldownError) SecondsRemaining() int64 {
	s := int64(math.Ceil(e.Remaining.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}
