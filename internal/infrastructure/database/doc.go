// Package database provides SQLite connection management for modulocore.
//
// This package manages:
//   - Opening the database with WAL mode, busy timeout and foreign keys
//   - Embedded SQL migrations applied one per transaction
//   - Health checks and lifecycle management
//
// The record store is shared between the MQTT consumer loop and
// request-serving callers; a single-connection pool keeps SQLite's
// single-writer model free of lock churn while WAL mode allows
// concurrent readers.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     true,
//	    BusyTimeout: 5,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
