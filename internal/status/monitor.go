package status

import (
	"context"
	"fmt"
	"time"

	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
	"github.com/modulo-iot/modulocore/internal/modulo"
	"github.com/modulo-iot/modulocore/internal/notify"
)

// MonitorConfig tunes the periodic fleet sweep.
type MonitorConfig struct {
	// Interval between sweeps.
	Interval time.Duration

	// OfflineAlertLimit caps how many offline alerts a single sweep may
	// emit, so a broker outage taking the whole fleet down does not
	// flood the dashboard.
	OfflineAlertLimit int

	// AlertUserID is the dashboard user that receives offline alerts.
	AlertUserID int64
}

// Monitor periodically classifies the whole fleet and emits offline
// alerts through the notifier. The notifier's daily dedup keeps repeated
// sweeps over a dead module from producing repeated alerts.
type Monitor struct {
	repo     modulo.Repository
	notifier *notify.Notifier
	logger   *logging.Logger
	cfg      MonitorConfig
	now      func() time.Time
}

// NewMonitor creates a fleet connectivity monitor.
func NewMonitor(repo modulo.Repository, notifier *notify.Notifier, logger *logging.Logger, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Monitor{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("component", "status_monitor"),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sweeps the fleet on the configured interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("status monitor started",
		"interval", m.cfg.Interval.String(),
		"offline_alert_limit", m.cfg.OfflineAlertLimit)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("status monitor stopped")
			return
		case <-ticker.C:
			if err := m.Sweep(ctx); err != nil {
				m.logger.Error("fleet sweep failed", "error", err)
			}
		}
	}
}

// Sweep classifies every module once and emits capped offline alerts.
func (m *Monitor) Sweep(ctx context.Context) error {
	modules, err := m.repo.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("listing modules: %w", err)
	}

	now := m.now()
	var online, warning, offline, alerts int

	for i := range modules {
		mod := &modules[i]

		state, err := m.classify(ctx, now, mod.ID)
		if err != nil {
			m.logger.Error("classifying module failed", "module_id", mod.ID, "error", err)
			continue
		}

		switch state {
		case StateOnline:
			online++
		case StateWarning:
			warning++
		case StateOffline:
			offline++
			if alerts >= m.cfg.OfflineAlertLimit {
				continue
			}
			created, err := m.notifier.Notify(ctx, notify.NewOfflineAlert(m.cfg.AlertUserID, mod.ID, mod.Name))
			if err != nil {
				m.logger.Error("offline alert failed", "module_id", mod.ID, "error", err)
				continue
			}
			if created {
				alerts++
			}
		}
	}

	m.logger.Info("fleet sweep complete",
		"modules", len(modules),
		"online", online,
		"warning", warning,
		"offline", offline,
		"alerts", alerts)
	return nil
}

// ClassifyModule derives the current state of a single module.
func (m *Monitor) ClassifyModule(ctx context.Context, moduleID int64) (State, error) {
	return m.classify(ctx, m.now(), moduleID)
}

func (m *Monitor) classify(ctx context.Context, now time.Time, moduleID int64) (State, error) {
	measurement, err := m.repo.LatestMeasurement(ctx, moduleID)
	if err != nil {
		return "", fmt.Errorf("loading latest measurement: %w", err)
	}

	var lastSeen *time.Time
	if measurement != nil {
		lastSeen = &measurement.RecordedAt
	}

	// The beam downgrade only matters for otherwise-online modules;
	// skip the query when silence already decides the state.
	if Classify(now, lastSeen) != StateOnline {
		return Classify(now, lastSeen), nil
	}

	beam, err := m.repo.LatestBeamRecord(ctx, moduleID)
	if err != nil {
		return "", fmt.Errorf("loading latest beam record: %w", err)
	}
	return ClassifyModule(now, lastSeen, beam), nil
}
