package status

import (
	"time"

	"github.com/modulo-iot/modulocore/internal/modulo"
)

// State is a module's derived connectivity classification.
type State string

// Connectivity states.
const (
	StateOnline  State = "online"
	StateWarning State = "warning"
	StateOffline State = "offline"
)

// Classification thresholds. Only measurement traffic counts as
// liveness: heartbeats and other message kinds never extend it.
const (
	// WarningAfter is the silence after which a module is suspect.
	WarningAfter = 5 * time.Minute

	// OfflineAfter is the silence after which a module is offline.
	OfflineAfter = 15 * time.Minute
)

// Classify derives connectivity from the timestamp of the module's most
// recent measurement. A module with no measurements at all is offline.
//
// Boundaries are inclusive on the unhealthy side: exactly five minutes
// of silence is warning, exactly fifteen is offline.
func Classify(now time.Time, lastMeasurement *time.Time) State {
	if lastMeasurement == nil {
		return StateOffline
	}

	silence := now.Sub(*lastMeasurement)
	switch {
	case silence >= OfflineAfter:
		return StateOffline
	case silence >= WarningAfter:
		return StateWarning
	default:
		return StateOnline
	}
}

// ClassifyModule derives connectivity and applies the beam mismatch
// downgrade: a module whose latest beam record reports a position
// mismatch is never better than warning, even when its measurements are
// fresh.
func ClassifyModule(now time.Time, lastMeasurement *time.Time, latestBeam *modulo.BeamRecord) State {
	state := Classify(now, lastMeasurement)
	if state == StateOnline && latestBeam.HasMismatch() {
		return StateWarning
	}
	return state
}
