package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
	"github.com/modulo-iot/modulocore/internal/infrastructure/mqtt"
	"github.com/modulo-iot/modulocore/internal/modulo"
)

// ActionReset is the standard command action for power-cycling a module.
const ActionReset = "reset"

// Publisher abstracts the MQTT client for command publication.
type Publisher interface {
	PublishJSON(topic string, payload []byte) error
}

// Command is the wire payload published to a module's control topic.
type Command struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// Result reports an accepted command.
type Result struct {
	ModuleID int64
	Action   string
	IssuedAt time.Time

	// Logged is true when the command was recorded against the
	// module's reset control. Modules without a reset control still
	// receive the command but nothing is logged.
	Logged bool
}

// Dispatcher issues commands to modules with a per-module cooldown so
// repeated dashboard clicks cannot hammer the hardware.
//
// The cooldown check and stamp happen under one lock, so concurrent
// requests for the same module admit exactly one command.
type Dispatcher struct {
	repo      modulo.Repository
	publisher Publisher
	topics    mqtt.Topics
	logger    *logging.Logger
	cooldown  time.Duration
	now       func() time.Time

	mu         sync.Mutex
	lastIssued map[int64]time.Time
}

// NewDispatcher creates a command dispatcher with the given cooldown.
func NewDispatcher(repo modulo.Repository, publisher Publisher, logger *logging.Logger, cooldown time.Duration) *Dispatcher {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger.With("component", "control"),
		cooldown:   cooldown,
		now:        time.Now,
		lastIssued: make(map[int64]time.Time),
	}
}

// IssueCommand publishes an action to a module's control topic.
//
// Returns ErrCooldownActive (a *CooldownError) when the module's
// cooldown has not elapsed, and modulo.ErrModuleNotFound for unknown
// modules. A module without a reset control still receives the command;
// only the reset log entry is skipped.
func (d *Dispatcher) IssueCommand(ctx context.Context, moduleID int64, action string) (*Result, error) {
	if action == "" {
		return nil, ErrEmptyAction
	}

	module, err := d.repo.GetModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("loading module %d: %w", moduleID, err)
	}

	now := d.now()
	if err := d.claim(moduleID, now); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(Command{
		Action:    action,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		d.release(moduleID, now)
		return nil, fmt.Errorf("encoding command: %w", err)
	}

	if err := d.publisher.PublishJSON(d.topics.Control(moduleID), payload); err != nil {
		// A failed publish should not burn the cooldown window.
		d.release(moduleID, now)
		return nil, fmt.Errorf("publishing command: %w", err)
	}

	result := &Result{
		ModuleID: module.ID,
		Action:   action,
		IssuedAt: now,
	}

	switch control, err := d.repo.GetResetControl(ctx, moduleID); {
	case err == nil:
		if err := d.repo.InsertResetLog(ctx, control.ID, true, now); err != nil {
			// The command already went out; log the bookkeeping
			// failure and report success.
			d.logger.Error("reset log append failed",
				"module_id", moduleID,
				"control_id", control.ID,
				"error", err)
		} else {
			result.Logged = true
		}
	case errors.Is(err, modulo.ErrNoResetControl):
		d.logger.Debug("module has no reset control, command not logged",
			"module_id", moduleID)
	default:
		d.logger.Error("loading reset control failed",
			"module_id", moduleID,
			"error", err)
	}

	d.logger.Info("command issued",
		"module_id", moduleID,
		"action", action,
		"logged", result.Logged)
	return result, nil
}

// claim stamps the cooldown window for a module, or reports the time
// remaining on an active one.
func (d *Dispatcher) claim(moduleID int64, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastIssued[moduleID]; ok {
		if elapsed := now.Sub(last); elapsed < d.cooldown {
			return &CooldownError{Remaining: d.cooldown - elapsed}
		}
	}
	d.lastIssued[moduleID] = now
	return nil
}

// release undoes a claim that never resulted in a published command.
func (d *Dispatcher) release(moduleID int64, claimed time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastIssued[moduleID]; ok && last.Equal(claimed) {
		delete(d.lastIssued, moduleID)
	}
}
