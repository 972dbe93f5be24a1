package mqtt

import "fmt"

// Topic prefixes spoken by the field modules.
//
// The fleet predates this service, so the wire names are fixed: modules
// publish on both the English prefixes and the legacy Spanish ones
// (apunte = beam, estado = connection state). Subscriptions cover both.
const (
	// TopicPrefixMeasurement carries temperature/pressure readings.
	TopicPrefixMeasurement = "measurement"

	// TopicPrefixBeam carries beam position updates.
	TopicPrefixBeam = "beam"

	// TopicPrefixBeamLegacy is the legacy Spanish alias for beam updates.
	TopicPrefixBeamLegacy = "apunte"

	// TopicPrefixConnState carries connection lifecycle events.
	TopicPrefixConnState = "connection-state"

	// TopicPrefixConnStateLegacy is the legacy Spanish alias for connection events.
	TopicPrefixConnStateLegacy = "estado"

	// TopicPrefixHeartbeat carries liveness/metadata pings.
	TopicPrefixHeartbeat = "heartbeat"

	// TopicPrefixModule is the base for per-module topics (tech-info).
	TopicPrefixModule = "module"

	// TopicPrefixControl is the base for commands published to modules.
	TopicPrefixControl = "control"

	// TopicPrefixSystem is the base for modulocore lifecycle topics.
	TopicPrefixSystem = "modulocore/system"
)

// Topics provides builders for the MQTT topics this core subscribes to
// and publishes on. Using these helpers keeps topic naming consistent
// across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.Control(7)
//	// Returns: "control/7"
type Topics struct{}

// =============================================================================
// Publish Topics
// =============================================================================

// BeamConfirmation returns the topic for accepted beam update confirmations.
//
// Example: beam/confirmation
func (Topics) BeamConfirmation() string {
	return fmt.Sprintf("%s/confirmation", TopicPrefixBeam)
}

// Control returns the command topic for a specific module.
//
// Example: control/7
func (Topics) Control(moduleID int64) string {
	return fmt.Sprintf("%s/%d", TopicPrefixControl, moduleID)
}

// SystemStatus returns the core lifecycle status topic (LWT target).
//
// Example: modulocore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllMeasurements returns a pattern matching all measurement topics.
//
// Pattern: measurement/#
func (Topics) AllMeasurements() string {
	return TopicPrefixMeasurement + "/#"
}

// AllBeamUpdates returns a pattern matching all beam update topics.
//
// Pattern: beam/#
func (Topics) AllBeamUpdates() string {
	return TopicPrefixBeam + "/#"
}

// AllBeamUpdatesLegacy returns the legacy beam update pattern.
//
// Pattern: apunte/#
func (Topics) AllBeamUpdatesLegacy() string {
	return TopicPrefixBeamLegacy + "/#"
}

// AllConnectionEvents returns a pattern matching all connection state topics.
//
// Pattern: connection-state/#
func (Topics) AllConnectionEvents() string {
	return TopicPrefixConnState + "/#"
}

// AllConnectionEventsLegacy returns the legacy connection state pattern.
//
// Pattern: estado/#
func (Topics) AllConnectionEventsLegacy() string {
	return TopicPrefixConnStateLegacy + "/#"
}

// AllHeartbeats returns a pattern matching all heartbeat topics.
//
// Pattern: heartbeat/#
func (Topics) AllHeartbeats() string {
	return TopicPrefixHeartbeat + "/#"
}

// AllTechInfo returns a pattern matching all per-module tech-info topics.
//
// Pattern: module/+/tech-info
func (Topics) AllTechInfo() string {
	return TopicPrefixModule + "/+/tech-info"
}

// SubscriptionPatterns returns every pattern the ingest consumer needs.
// The consumer subscribes to all of them; the wrapper client restores the
// set after a reconnect.
func (t Topics) SubscriptionPatterns() []string {
	return []string{
		t.AllMeasurements(),
		t.AllBeamUpdates(),
		t.AllBeamUpdatesLegacy(),
		t.AllConnectionEvents(),
		t.AllConnectionEventsLegacy(),
		t.AllHeartbeats(),
		t.AllTechInfo(),
	}
}
