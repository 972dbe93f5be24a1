package modulo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the fleet schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE modules (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT,
			location         TEXT CHECK (location IN ('north', 'south', 'east', 'west')),
			hardware_version TEXT NOT NULL DEFAULT '1.0',
			up               REAL NOT NULL DEFAULT 0.0,
			down             REAL NOT NULL DEFAULT 0.0,
			created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE TABLE reset_controls (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			label     TEXT,
			module_id INTEGER REFERENCES modules(id)
		) STRICT;
		CREATE TABLE measurements (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			module_id   INTEGER NOT NULL,
			temperature REAL,
			pressure    REAL,
			recorded_at TEXT NOT NULL
		) STRICT;
		CREATE TABLE beam_records (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			module_id     INTEGER NOT NULL,
			up            REAL NOT NULL,
			down          REAL NOT NULL,
			up_expected   REAL,
			down_expected REAL,
			up_actual     REAL,
			down_actual   REAL,
			up_status     TEXT,
			down_status   TEXT,
			recorded_at   TEXT NOT NULL
		) STRICT;
		CREATE TABLE connection_events (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			module_id          INTEGER NOT NULL,
			event_type         TEXT NOT NULL,
			disconnect_seconds INTEGER,
			detail             TEXT,
			recorded_at        TEXT NOT NULL
		) STRICT;
		CREATE TABLE tech_info_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			module_id        INTEGER NOT NULL,
			firmware         TEXT,
			ip_address       TEXT,
			mac_address      TEXT,
			uptime_seconds   INTEGER,
			free_memory      INTEGER,
			internal_temp    REAL,
			supply_voltage   REAL,
			signal_strength  INTEGER,
			active           INTEGER NOT NULL DEFAULT 1,
			updated_at       TEXT NOT NULL
		) STRICT;
		CREATE UNIQUE INDEX idx_tech_info_active ON tech_info_snapshots(module_id) WHERE active = 1;
		CREATE TABLE reset_logs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			reset_control_id INTEGER NOT NULL,
			performed        INTEGER NOT NULL,
			created_at       TEXT NOT NULL
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// seedModule inserts a module row and returns its ID.
func seedModule(t *testing.T, db *sql.DB, name string, location Location) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO modules (name, location) VALUES (?, ?)`,
		name, string(location))
	if err != nil {
		t.Fatalf("failed to seed module: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read module id: %v", err)
	}
	return id
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func str(v string) *string   { return &v }

func TestSQLiteRepository_GetModule(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "north-tower-1", LocationNorth)

	m, err := repo.GetModule(ctx, id)
	if err != nil {
		t.Fatalf("GetModule() error = %v", err)
	}
	if m.Name != "north-tower-1" {
		t.Errorf("Name = %q, want %q", m.Name, "north-tower-1")
	}
	if m.Location != LocationNorth {
		t.Errorf("Location = %q, want %q", m.Location, LocationNorth)
	}
	if m.HardwareVersion != "1.0" {
		t.Errorf("HardwareVersion = %q, want %q", m.HardwareVersion, "1.0")
	}

	if _, err := repo.GetModule(ctx, 9999); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("GetModule(missing) error = %v, want ErrModuleNotFound", err)
	}
}

func TestSQLiteRepository_ListModules(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	seedModule(t, db, "a", LocationNorth)
	seedModule(t, db, "b", LocationSouth)

	modules, err := repo.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("ListModules() returned %d modules, want 2", len(modules))
	}
	if modules[0].Name != "a" || modules[1].Name != "b" {
		t.Errorf("ListModules() order = [%q, %q], want [a, b]", modules[0].Name, modules[1].Name)
	}
}

func TestSQLiteRepository_UpdateModuleBeam(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationEast)

	if err := repo.UpdateModuleBeam(ctx, id, 1.5, 2.0); err != nil {
		t.Fatalf("UpdateModuleBeam() error = %v", err)
	}

	m, err := repo.GetModule(ctx, id)
	if err != nil {
		t.Fatalf("GetModule() error = %v", err)
	}
	if m.Up != 1.5 || m.Down != 2.0 {
		t.Errorf("beam = (%v, %v), want (1.5, 2.0)", m.Up, m.Down)
	}

	if err := repo.UpdateModuleBeam(ctx, id, 4.0, 0.0); !errors.Is(err, ErrInvalidBeamValue) {
		t.Errorf("UpdateModuleBeam(out of range) error = %v, want ErrInvalidBeamValue", err)
	}
	if err := repo.UpdateModuleBeam(ctx, id, 1.3, 0.0); !errors.Is(err, ErrInvalidBeamValue) {
		t.Errorf("UpdateModuleBeam(off grid) error = %v, want ErrInvalidBeamValue", err)
	}
	if err := repo.UpdateModuleBeam(ctx, 9999, 1.0, 1.0); !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("UpdateModuleBeam(missing) error = %v, want ErrModuleNotFound", err)
	}
}

func TestSQLiteRepository_Measurements(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationWest)

	// No rows yet: latest is nil, not an error.
	latest, err := repo.LatestMeasurement(ctx, id)
	if err != nil {
		t.Fatalf("LatestMeasurement() error = %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestMeasurement() = %+v, want nil", latest)
	}

	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	older := &Measurement{ModuleID: id, Temperature: f64(21.5), Pressure: f64(1013.2), RecordedAt: base}
	newer := &Measurement{ModuleID: id, Temperature: f64(22.0), RecordedAt: base.Add(time.Minute)}

	if err := repo.InsertMeasurement(ctx, older); err != nil {
		t.Fatalf("InsertMeasurement(older) error = %v", err)
	}
	if err := repo.InsertMeasurement(ctx, newer); err != nil {
		t.Fatalf("InsertMeasurement(newer) error = %v", err)
	}

	latest, err = repo.LatestMeasurement(ctx, id)
	if err != nil {
		t.Fatalf("LatestMeasurement() error = %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("LatestMeasurement() = %+v, want id %d", latest, newer.ID)
	}
	if latest.Temperature == nil || *latest.Temperature != 22.0 {
		t.Errorf("Temperature = %v, want 22.0", latest.Temperature)
	}
	if latest.Pressure != nil {
		t.Errorf("Pressure = %v, want nil", latest.Pressure)
	}
	if !latest.RecordedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("RecordedAt = %v, want %v", latest.RecordedAt, base.Add(time.Minute))
	}
}

func TestSQLiteRepository_LatestMeasurement_InsertionOrderTiebreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationNorth)
	at := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	first := &Measurement{ModuleID: id, Temperature: f64(20.0), RecordedAt: at}
	second := &Measurement{ModuleID: id, Temperature: f64(20.5), RecordedAt: at}

	if err := repo.InsertMeasurement(ctx, first); err != nil {
		t.Fatalf("InsertMeasurement() error = %v", err)
	}
	if err := repo.InsertMeasurement(ctx, second); err != nil {
		t.Fatalf("InsertMeasurement() error = %v", err)
	}

	latest, err := repo.LatestMeasurement(ctx, id)
	if err != nil {
		t.Fatalf("LatestMeasurement() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("LatestMeasurement() id = %d, want later insert %d", latest.ID, second.ID)
	}
}

func TestSQLiteRepository_BeamRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationSouth)

	latest, err := repo.LatestBeamRecord(ctx, id)
	if err != nil {
		t.Fatalf("LatestBeamRecord() error = %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestBeamRecord() = %+v, want nil", latest)
	}

	rec := &BeamRecord{
		ModuleID:     id,
		Up:           1.0,
		Down:         2.5,
		UpExpected:   f64(1.0),
		UpActual:     f64(1.0),
		UpStatus:     str("ok"),
		DownExpected: f64(2.5),
		DownActual:   f64(2.0),
		DownStatus:   str(BeamStatusMismatch),
		RecordedAt:   time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertBeamRecord(ctx, rec); err != nil {
		t.Fatalf("InsertBeamRecord() error = %v", err)
	}

	latest, err = repo.LatestBeamRecord(ctx, id)
	if err != nil {
		t.Fatalf("LatestBeamRecord() error = %v", err)
	}
	if latest == nil {
		t.Fatal("LatestBeamRecord() = nil, want record")
	}
	if !latest.HasMismatch() {
		t.Error("HasMismatch() = false, want true")
	}
	if latest.Up != 1.0 || latest.Down != 2.5 {
		t.Errorf("beam = (%v, %v), want (1.0, 2.5)", latest.Up, latest.Down)
	}

	bad := &BeamRecord{ModuleID: id, Up: -0.5, Down: 1.0}
	if err := repo.InsertBeamRecord(ctx, bad); !errors.Is(err, ErrInvalidBeamValue) {
		t.Errorf("InsertBeamRecord(invalid) error = %v, want ErrInvalidBeamValue", err)
	}
}

func TestSQLiteRepository_ConnectionEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationNorth)

	event := &ConnectionEvent{
		ModuleID:          id,
		EventType:         EventReconnect,
		DisconnectSeconds: i64(42),
		Detail:            "router reboot",
		RecordedAt:        time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertConnectionEvent(ctx, event); err != nil {
		t.Fatalf("InsertConnectionEvent() error = %v", err)
	}
	if event.ID == 0 {
		t.Error("InsertConnectionEvent() did not set ID")
	}

	bad := &ConnectionEvent{ModuleID: id, EventType: "BOOTED"}
	if err := repo.InsertConnectionEvent(ctx, bad); !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("InsertConnectionEvent(invalid type) error = %v, want ErrInvalidEventType", err)
	}
}

func TestSQLiteRepository_UpsertActiveTechInfo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationEast)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	// First upsert creates the active snapshot.
	first, err := repo.UpsertActiveTechInfo(ctx, id, TechInfoUpdate{
		Firmware:      str("2.1.0"),
		IPAddress:     str("10.0.0.7"),
		UptimeSeconds: i64(3600),
	}, now)
	if err != nil {
		t.Fatalf("UpsertActiveTechInfo(create) error = %v", err)
	}
	if first.ID == 0 || !first.Active {
		t.Fatalf("snapshot = %+v, want active with ID set", first)
	}

	// Second upsert merges: absent fields are retained, never cleared.
	second, err := repo.UpsertActiveTechInfo(ctx, id, TechInfoUpdate{
		UptimeSeconds:  i64(7200),
		SignalStrength: i64(-61),
	}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("UpsertActiveTechInfo(merge) error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("merge created new row id %d, want update of %d", second.ID, first.ID)
	}
	if second.Firmware == nil || *second.Firmware != "2.1.0" {
		t.Errorf("Firmware = %v, want retained 2.1.0", second.Firmware)
	}
	if second.UptimeSeconds == nil || *second.UptimeSeconds != 7200 {
		t.Errorf("UptimeSeconds = %v, want 7200", second.UptimeSeconds)
	}
	if second.SignalStrength == nil || *second.SignalStrength != -61 {
		t.Errorf("SignalStrength = %v, want -61", second.SignalStrength)
	}

	// Exactly one active row should exist.
	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM tech_info_snapshots WHERE module_id = ? AND active = 1`, id,
	).Scan(&count); err != nil {
		t.Fatalf("counting active snapshots: %v", err)
	}
	if count != 1 {
		t.Errorf("active snapshot count = %d, want 1", count)
	}
}

func TestSQLiteRepository_InsertTechInfoHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	id := seedModule(t, db, "m", LocationWest)

	snapshot := &TechInfoSnapshot{
		ModuleID:  id,
		Firmware:  str("2.1.0"),
		UpdatedAt: time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertTechInfoHistory(ctx, snapshot); err != nil {
		t.Fatalf("InsertTechInfoHistory() error = %v", err)
	}
	if err := repo.InsertTechInfoHistory(ctx, snapshot); err != nil {
		t.Fatalf("InsertTechInfoHistory(second) error = %v", err)
	}

	// History rows are inactive and unlimited per module.
	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM tech_info_snapshots WHERE module_id = ? AND active = 0`, id,
	).Scan(&count); err != nil {
		t.Fatalf("counting history snapshots: %v", err)
	}
	if count != 2 {
		t.Errorf("history snapshot count = %d, want 2", count)
	}
}

func TestSQLiteRepository_ResetControls(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	withControl := seedModule(t, db, "with", LocationNorth)
	without := seedModule(t, db, "without", LocationSouth)

	result, err := db.Exec(
		`INSERT INTO reset_controls (label, module_id) VALUES (?, ?)`,
		"relay-3", withControl)
	if err != nil {
		t.Fatalf("failed to seed reset control: %v", err)
	}
	controlID, _ := result.LastInsertId()

	control, err := repo.GetResetControl(ctx, withControl)
	if err != nil {
		t.Fatalf("GetResetControl() error = %v", err)
	}
	if control.ID != controlID || control.Label != "relay-3" {
		t.Errorf("control = %+v, want id %d label relay-3", control, controlID)
	}

	if _, err := repo.GetResetControl(ctx, without); !errors.Is(err, ErrNoResetControl) {
		t.Errorf("GetResetControl(unassigned) error = %v, want ErrNoResetControl", err)
	}

	if err := repo.InsertResetLog(ctx, controlID, true, time.Now()); err != nil {
		t.Fatalf("InsertResetLog() error = %v", err)
	}

	var performed bool
	if err := db.QueryRow(
		`SELECT performed FROM reset_logs WHERE reset_control_id = ?`, controlID,
	).Scan(&performed); err != nil {
		t.Fatalf("reading reset log: %v", err)
	}
	if !performed {
		t.Error("reset log performed = false, want true")
	}
}
