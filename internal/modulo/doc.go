// Package modulo defines the module fleet domain model and its
// persistence layer.
//
// A module is a field-deployed IoT unit reporting temperature, pressure
// and beam-position telemetry over MQTT. This package holds the entity
// types (Module, Measurement, BeamRecord, ConnectionEvent,
// TechInfoSnapshot, ResetControl), beam value validation, and a
// SQLite-backed Repository. Modules themselves are provisioned by the
// dashboard; the core only appends telemetry history and mutates live
// beam values and technical metadata.
package modulo
