package modulo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for module fleet persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetModule retrieves a module by ID.
	// Returns ErrModuleNotFound if the module does not exist.
	GetModule(ctx context.Context, id int64) (*Module, error)

	// ListModules retrieves all provisioned modules.
	ListModules(ctx context.Context) ([]Module, error)

	// UpdateModuleBeam replaces the module's live beam position.
	// Returns ErrModuleNotFound if the module does not exist.
	UpdateModuleBeam(ctx context.Context, id int64, up, down float64) error

	// InsertMeasurement appends an immutable measurement row.
	InsertMeasurement(ctx context.Context, m *Measurement) error

	// LatestMeasurement retrieves the most recent measurement for a
	// module, or nil when none have been recorded.
	LatestMeasurement(ctx context.Context, moduleID int64) (*Measurement, error)

	// InsertBeamRecord appends an immutable beam history row.
	InsertBeamRecord(ctx context.Context, b *BeamRecord) error

	// LatestBeamRecord retrieves the most recent beam record for a
	// module, or nil when none have been recorded.
	LatestBeamRecord(ctx context.Context, moduleID int64) (*BeamRecord, error)

	// InsertConnectionEvent appends a connection lifecycle row verbatim.
	InsertConnectionEvent(ctx context.Context, e *ConnectionEvent) error

	// UpsertActiveTechInfo merges the update into the module's active
	// snapshot, creating one when absent. Only fields present in the
	// update are overwritten. Returns the post-merge snapshot.
	UpsertActiveTechInfo(ctx context.Context, moduleID int64, update TechInfoUpdate, now time.Time) (*TechInfoSnapshot, error)

	// InsertTechInfoHistory appends an inactive snapshot history row.
	InsertTechInfoHistory(ctx context.Context, s *TechInfoSnapshot) error

	// GetResetControl retrieves the reset control assigned to a module.
	// Returns ErrNoResetControl when the module has none.
	GetResetControl(ctx context.Context, moduleID int64) (*ResetControl, error)

	// InsertResetLog appends a command log row for a reset control.
	InsertResetLog(ctx context.Context, controlID int64, performed bool, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Timestamps are stored as RFC3339 UTC text at second precision so
// lexical ordering matches chronological ordering.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// GetModule retrieves a module by ID.
func (r *SQLiteRepository) GetModule(ctx context.Context, id int64) (*Module, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(location, ''), hardware_version,
			up, down, created_at, updated_at
		FROM modules
		WHERE id = ?`

	m, err := scanModule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("querying module by id: %w", err)
	}
	return m, nil
}

// ListModules retrieves all provisioned modules.
func (r *SQLiteRepository) ListModules(ctx context.Context) ([]Module, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(location, ''), hardware_version,
			up, down, created_at, updated_at
		FROM modules
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}

// UpdateModuleBeam replaces the module's live beam position.
func (r *SQLiteRepository) UpdateModuleBeam(ctx context.Context, id int64, up, down float64) error {
	if err := ValidateBeamPair(up, down); err != nil {
		return err
	}

	query := `
		UPDATE modules
		SET up = ?, down = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, up, down, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating module beam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking beam update result: %w", err)
	}
	if affected == 0 {
		return ErrModuleNotFound
	}
	return nil
}

// InsertMeasurement appends an immutable measurement row.
func (r *SQLiteRepository) InsertMeasurement(ctx context.Context, m *Measurement) error {
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO measurements (module_id, temperature, pressure, recorded_at)
		VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, m.ModuleID, m.Temperature, m.Pressure, fmtTime(m.RecordedAt))
	if err != nil {
		return fmt.Errorf("inserting measurement: %w", err)
	}
	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading measurement id: %w", err)
	}
	return nil
}

// LatestMeasurement retrieves the most recent measurement for a module.
func (r *SQLiteRepository) LatestMeasurement(ctx context.Context, moduleID int64) (*Measurement, error) {
	query := `
		SELECT id, module_id, temperature, pressure, recorded_at
		FROM measurements
		WHERE module_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	var (
		m        Measurement
		recorded string
	)
	err := r.db.QueryRowContext(ctx, query, moduleID).Scan(
		&m.ID, &m.ModuleID, &m.Temperature, &m.Pressure, &recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest measurement: %w", err)
	}
	if m.RecordedAt, err = parseTime(recorded); err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertBeamRecord appends an immutable beam history row.
func (r *SQLiteRepository) InsertBeamRecord(ctx context.Context, b *BeamRecord) error {
	if err := ValidateBeamPair(b.Up, b.Down); err != nil {
		return err
	}
	if b.RecordedAt.IsZero() {
		b.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO beam_records (
			module_id, up, down,
			up_expected, down_expected, up_actual, down_actual,
			up_status, down_status, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		b.ModuleID, b.Up, b.Down,
		b.UpExpected, b.DownExpected, b.UpActual, b.DownActual,
		b.UpStatus, b.DownStatus, fmtTime(b.RecordedAt))
	if err != nil {
		return fmt.Errorf("inserting beam record: %w", err)
	}
	b.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading beam record id: %w", err)
	}
	return nil
}

// LatestBeamRecord retrieves the most recent beam record for a module.
func (r *SQLiteRepository) LatestBeamRecord(ctx context.Context, moduleID int64) (*BeamRecord, error) {
	query := `
		SELECT id, module_id, up, down,
			up_expected, down_expected, up_actual, down_actual,
			up_status, down_status, recorded_at
		FROM beam_records
		WHERE module_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	var (
		b        BeamRecord
		recorded string
	)
	err := r.db.QueryRowContext(ctx, query, moduleID).Scan(
		&b.ID, &b.ModuleID, &b.Up, &b.Down,
		&b.UpExpected, &b.DownExpected, &b.UpActual, &b.DownActual,
		&b.UpStatus, &b.DownStatus, &recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest beam record: %w", err)
	}
	if b.RecordedAt, err = parseTime(recorded); err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertConnectionEvent appends a connection lifecycle row verbatim.
func (r *SQLiteRepository) InsertConnectionEvent(ctx context.Context, e *ConnectionEvent) error {
	if !e.EventType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, e.EventType)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO connection_events (module_id, event_type, disconnect_seconds, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		e.ModuleID, string(e.EventType), e.DisconnectSeconds, e.Detail, fmtTime(e.RecordedAt))
	if err != nil {
		return fmt.Errorf("inserting connection event: %w", err)
	}
	e.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading connection event id: %w", err)
	}
	return nil
}

// UpsertActiveTechInfo merges the update into the module's active snapshot.
func (r *SQLiteRepository) UpsertActiveTechInfo(ctx context.Context, moduleID int64, update TechInfoUpdate, now time.Time) (*TechInfoSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting tech info transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	snapshot, err := activeTechInfoTx(ctx, tx, moduleID)
	if err != nil {
		return nil, err
	}

	if snapshot == nil {
		snapshot = &TechInfoSnapshot{ModuleID: moduleID, Active: true}
	}
	update.Apply(snapshot)
	snapshot.UpdatedAt = now.UTC()

	if snapshot.ID == 0 {
		query := `
			INSERT INTO tech_info_snapshots (
				module_id, firmware, ip_address, mac_address,
				uptime_seconds, free_memory, internal_temp, supply_voltage,
				signal_strength, active, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`

		result, err := tx.ExecContext(ctx, query,
			snapshot.ModuleID, snapshot.Firmware, snapshot.IPAddress, snapshot.MACAddress,
			snapshot.UptimeSeconds, snapshot.FreeMemory, snapshot.InternalTemp, snapshot.SupplyVoltage,
			snapshot.SignalStrength, fmtTime(snapshot.UpdatedAt))
		if err != nil {
			return nil, fmt.Errorf("inserting active tech info: %w", err)
		}
		if snapshot.ID, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("reading tech info id: %w", err)
		}
	} else {
		query := `
			UPDATE tech_info_snapshots
			SET firmware = ?, ip_address = ?, mac_address = ?,
				uptime_seconds = ?, free_memory = ?, internal_temp = ?,
				supply_voltage = ?, signal_strength = ?, updated_at = ?
			WHERE id = ?`

		if _, err := tx.ExecContext(ctx, query,
			snapshot.Firmware, snapshot.IPAddress, snapshot.MACAddress,
			snapshot.UptimeSeconds, snapshot.FreeMemory, snapshot.InternalTemp,
			snapshot.SupplyVoltage, snapshot.SignalStrength, fmtTime(snapshot.UpdatedAt),
			snapshot.ID); err != nil {
			return nil, fmt.Errorf("updating active tech info: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing tech info update: %w", err)
	}
	return snapshot, nil
}

func activeTechInfoTx(ctx context.Context, tx *sql.Tx, moduleID int64) (*TechInfoSnapshot, error) {
	query := `
		SELECT id, module_id, firmware, ip_address, mac_address,
			uptime_seconds, free_memory, internal_temp, supply_voltage,
			signal_strength, active, updated_at
		FROM tech_info_snapshots
		WHERE module_id = ? AND active = 1`

	var (
		s       TechInfoSnapshot
		updated string
	)
	err := tx.QueryRowContext(ctx, query, moduleID).Scan(
		&s.ID, &s.ModuleID, &s.Firmware, &s.IPAddress, &s.MACAddress,
		&s.UptimeSeconds, &s.FreeMemory, &s.InternalTemp, &s.SupplyVoltage,
		&s.SignalStrength, &s.Active, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active tech info: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertTechInfoHistory appends an inactive snapshot history row.
func (r *SQLiteRepository) InsertTechInfoHistory(ctx context.Context, s *TechInfoSnapshot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tech_info_snapshots (
			module_id, firmware, ip_address, mac_address,
			uptime_seconds, free_memory, internal_temp, supply_voltage,
			signal_strength, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`

	if _, err := r.db.ExecContext(ctx, query,
		s.ModuleID, s.Firmware, s.IPAddress, s.MACAddress,
		s.UptimeSeconds, s.FreeMemory, s.InternalTemp, s.SupplyVoltage,
		s.SignalStrength, fmtTime(s.UpdatedAt)); err != nil {
		return fmt.Errorf("inserting tech info history: %w", err)
	}
	return nil
}

// GetResetControl retrieves the reset control assigned to a module.
func (r *SQLiteRepository) GetResetControl(ctx context.Context, moduleID int64) (*ResetControl, error) {
	query := `
		SELECT id, label, module_id
		FROM reset_controls
		WHERE module_id = ?`

	var c ResetControl
	err := r.db.QueryRowContext(ctx, query, moduleID).Scan(&c.ID, &c.Label, &c.ModuleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResetControl
	}
	if err != nil {
		return nil, fmt.Errorf("querying reset control: %w", err)
	}
	return &c, nil
}

// InsertResetLog appends a command log row for a reset control.
func (r *SQLiteRepository) InsertResetLog(ctx context.Context, controlID int64, performed bool, at time.Time) error {
	query := `
		INSERT INTO reset_logs (reset_control_id, performed, created_at)
		VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, controlID, performed, fmtTime(at)); err != nil {
		return fmt.Errorf("inserting reset log: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanModule(s scanner) (*Module, error) {
	var (
		m        Module
		location string
		created  string
		updated  string
	)
	if err := s.Scan(&m.ID, &m.Name, &location, &m.HardwareVersion,
		&m.Up, &m.Down, &created, &updated); err != nil {
		return nil, err
	}

	m.Location = Location(location)
	var err error
	if m.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &m, nil
}
