package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modulo-iot/modulocore/internal/infrastructure/influxdb"
	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
	"github.com/modulo-iot/modulocore/internal/infrastructure/mqtt"
	"github.com/modulo-iot/modulocore/internal/modulo"
)

// Publisher abstracts the MQTT client for confirmation publishes.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// Confirmation is the payload published to beam/confirmation after an
// accepted beam update: the accepted values plus a server timestamp.
type Confirmation struct {
	ModuleID  int64   `json:"moduleId"`
	Up        float64 `json:"up"`
	Down      float64 `json:"down"`
	Timestamp string  `json:"timestamp"`
}

// Handlers routes decoded messages to the record store.
//
// Every handler resolves the module first and drops the message with a
// logged error when it does not exist; the core never creates modules
// implicitly. Handler errors are reported to the consumer loop, which
// logs and moves on.
type Handlers struct {
	repo      modulo.Repository
	publisher Publisher
	influx    *influxdb.Client
	topics    mqtt.Topics
	logger    *logging.Logger
	now       func() time.Time
}

// NewHandlers creates the handler set. influx may be nil when the
// mirror is disabled.
func NewHandlers(repo modulo.Repository, publisher Publisher, influx *influxdb.Client, logger *logging.Logger) *Handlers {
	return &Handlers{
		repo:      repo,
		publisher: publisher,
		influx:    influx,
		logger:    logger.With("component", "ingest"),
		now:       time.Now,
	}
}

// Handle routes one envelope: match, decode, dispatch. Unmatched topics
// are a silent no-op.
func (h *Handlers) Handle(ctx context.Context, env Envelope) error {
	kind, ok := MatchTopic(env.Topic)
	if !ok {
		h.logger.Debug("unmatched topic dropped", "topic", env.Topic)
		return nil
	}

	switch kind {
	case KindMeasurement:
		return h.handleMeasurement(ctx, env)
	case KindBeamUpdate:
		return h.handleBeamUpdate(ctx, env)
	case KindConnectionEvent:
		return h.handleConnectionEvent(ctx, env)
	case KindHeartbeat:
		return h.handleHeartbeat(ctx, env)
	case KindTechInfo:
		return h.handleTechInfo(ctx, env)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

func (h *Handlers) handleMeasurement(ctx context.Context, env Envelope) error {
	msg, err := DecodeMeasurement(env.Payload)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetModule(ctx, msg.ModuleID); err != nil {
		return fmt.Errorf("resolving module %d: %w", msg.ModuleID, err)
	}

	measurement := &modulo.Measurement{
		ModuleID:    msg.ModuleID,
		Temperature: msg.Temperature,
		Pressure:    msg.Pressure,
		RecordedAt:  env.ReceivedAt,
	}
	if err := h.repo.InsertMeasurement(ctx, measurement); err != nil {
		return fmt.Errorf("storing measurement: %w", err)
	}

	h.influx.WriteMeasurement(msg.ModuleID, msg.Temperature, msg.Pressure, measurement.RecordedAt)

	h.logger.Debug("measurement stored",
		"module_id", msg.ModuleID,
		"measurement_id", measurement.ID)
	return nil
}

func (h *Handlers) handleBeamUpdate(ctx context.Context, env Envelope) error {
	msg, err := DecodeBeamUpdate(env.Payload)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetModule(ctx, msg.ModuleID); err != nil {
		return fmt.Errorf("resolving module %d: %w", msg.ModuleID, err)
	}

	record := &modulo.BeamRecord{
		ModuleID:     msg.ModuleID,
		Up:           msg.Up,
		Down:         msg.Down,
		UpExpected:   msg.UpExpected,
		DownExpected: msg.DownExpected,
		UpActual:     msg.UpActual,
		DownActual:   msg.DownActual,
		UpStatus:     msg.UpStatus,
		DownStatus:   msg.DownStatus,
		RecordedAt:   env.ReceivedAt,
	}
	if err := h.repo.InsertBeamRecord(ctx, record); err != nil {
		return fmt.Errorf("storing beam record: %w", err)
	}

	// Live position is last-write-wins; the two writes are not one
	// transaction, a crash between them leaves the beam history row
	// authoritative.
	if err := h.repo.UpdateModuleBeam(ctx, msg.ModuleID, msg.Up, msg.Down); err != nil {
		return fmt.Errorf("updating live beam position: %w", err)
	}

	h.influx.WriteBeamPosition(msg.ModuleID, msg.Up, msg.Down, record.RecordedAt)

	if err := h.publishConfirmation(msg); err != nil {
		// The record is already stored; a lost confirmation is not
		// worth failing the message over.
		h.logger.Warn("beam confirmation publish failed",
			"module_id", msg.ModuleID,
			"error", err)
	}

	h.logger.Debug("beam update stored",
		"module_id", msg.ModuleID,
		"up", msg.Up,
		"down", msg.Down)
	return nil
}

func (h *Handlers) publishConfirmation(msg *BeamUpdateMessage) error {
	payload, err := json.Marshal(Confirmation{
		ModuleID:  msg.ModuleID,
		Up:        msg.Up,
		Down:      msg.Down,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding confirmation: %w", err)
	}
	return h.publisher.PublishJSON(h.topics.BeamConfirmation(), payload)
}

func (h *Handlers) handleConnectionEvent(ctx context.Context, env Envelope) error {
	msg, err := DecodeConnectionEvent(env.Payload)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetModule(ctx, msg.ModuleID); err != nil {
		return fmt.Errorf("resolving module %d: %w", msg.ModuleID, err)
	}

	// Events may arrive out of order; they are stored verbatim rather
	// than reordered or collapsed.
	event := &modulo.ConnectionEvent{
		ModuleID:          msg.ModuleID,
		EventType:         msg.Event,
		DisconnectSeconds: msg.DisconnectSeconds,
		Detail:            msg.Detail,
		RecordedAt:        env.ReceivedAt,
	}
	if err := h.repo.InsertConnectionEvent(ctx, event); err != nil {
		return fmt.Errorf("storing connection event: %w", err)
	}

	h.logger.Debug("connection event stored",
		"module_id", msg.ModuleID,
		"event", string(msg.Event))
	return nil
}

func (h *Handlers) handleHeartbeat(ctx context.Context, env Envelope) error {
	msg, err := DecodeTechInfo(env.Payload)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetModule(ctx, msg.ModuleID); err != nil {
		return fmt.Errorf("resolving module %d: %w", msg.ModuleID, err)
	}

	snapshot, err := h.repo.UpsertActiveTechInfo(ctx, msg.ModuleID, msg.Update, env.ReceivedAt)
	if err != nil {
		return fmt.Errorf("updating tech info: %w", err)
	}

	h.mirrorHealth(msg.ModuleID, msg.Update)

	h.logger.Debug("heartbeat applied",
		"module_id", msg.ModuleID,
		"snapshot_id", snapshot.ID)
	return nil
}

func (h *Handlers) handleTechInfo(ctx context.Context, env Envelope) error {
	msg, err := DecodeTechInfo(env.Payload)
	if err != nil {
		return err
	}
	if _, err := h.repo.GetModule(ctx, msg.ModuleID); err != nil {
		return fmt.Errorf("resolving module %d: %w", msg.ModuleID, err)
	}

	snapshot, err := h.repo.UpsertActiveTechInfo(ctx, msg.ModuleID, msg.Update, env.ReceivedAt)
	if err != nil {
		return fmt.Errorf("updating tech info: %w", err)
	}

	// Tech-info additionally keeps a history trail of the post-merge
	// state; heartbeats only refresh the active snapshot.
	history := *snapshot
	history.ID = 0
	history.Active = false
	if err := h.repo.InsertTechInfoHistory(ctx, &history); err != nil {
		return fmt.Errorf("appending tech info history: %w", err)
	}

	h.mirrorHealth(msg.ModuleID, msg.Update)

	h.logger.Debug("tech info applied",
		"module_id", msg.ModuleID,
		"snapshot_id", snapshot.ID)
	return nil
}

// mirrorHealth forwards the numeric health fields of an update to the
// time-series mirror.
func (h *Handlers) mirrorHealth(moduleID int64, update modulo.TechInfoUpdate) {
	fields := make(map[string]interface{})
	if update.UptimeSeconds != nil {
		fields["uptime_seconds"] = *update.UptimeSeconds
	}
	if update.FreeMemory != nil {
		fields["free_memory"] = *update.FreeMemory
	}
	if update.InternalTemp != nil {
		fields["internal_temp"] = *update.InternalTemp
	}
	if update.SupplyVoltage != nil {
		fields["supply_voltage"] = *update.SupplyVoltage
	}
	if update.SignalStrength != nil {
		fields["signal_strength"] = *update.SignalStrength
	}
	if len(fields) == 0 {
		return
	}
	h.influx.WriteModuleHealth(moduleID, fields)
}
