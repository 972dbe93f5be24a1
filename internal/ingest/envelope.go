package ingest

import (
	"strings"
	"time"
)

// Kind identifies which handler a bus message is routed to.
type Kind int

// Message kinds. KindUnknown is never dispatched.
const (
	KindUnknown Kind = iota
	KindMeasurement
	KindBeamUpdate
	KindConnectionEvent
	KindHeartbeat
	KindTechInfo
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindMeasurement:
		return "measurement"
	case KindBeamUpdate:
		return "beam_update"
	case KindConnectionEvent:
		return "connection_event"
	case KindHeartbeat:
		return "heartbeat"
	case KindTechInfo:
		return "tech_info"
	default:
		return "unknown"
	}
}

// Envelope is a raw bus message with its receipt time.
type Envelope struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// MatchTopic selects the message kind for a topic. The exact
// module/{id}/tech-info shape is checked before the generic prefixes.
// Unmatched topics return (KindUnknown, false): they are dropped, not
// an error.
//
// The legacy Spanish prefixes apunte/ and estado/ are accepted
// alongside beam/ and connection-state/ because older firmware still
// publishes them.
func MatchTopic(topic string) (Kind, bool) {
	// Our own confirmation publishes land on beam/confirmation; never
	// route them back into the beam handler.
	if topic == confirmationTopic {
		return KindUnknown, false
	}

	if parts := strings.Split(topic, "/"); len(parts) == 3 &&
		parts[0] == "module" && parts[2] == "tech-info" && parts[1] != "" {
		return KindTechInfo, true
	}

	switch {
	case strings.HasPrefix(topic, "measurement/"):
		return KindMeasurement, true
	case strings.HasPrefix(topic, "beam/"), strings.HasPrefix(topic, "apunte/"):
		return KindBeamUpdate, true
	case strings.HasPrefix(topic, "connection-state/"), strings.HasPrefix(topic, "estado/"):
		return KindConnectionEvent, true
	case strings.HasPrefix(topic, "heartbeat/"):
		return KindHeartbeat, true
	default:
		return KindUnknown, false
	}
}

const confirmationTopic = "beam/confirmation"
