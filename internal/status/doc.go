// Package status derives module connectivity from telemetry recency.
//
// Connectivity is never stored; it is computed on demand from the
// timestamp of a module's most recent measurement (under five minutes of
// silence is online, five to fifteen is warning, fifteen or more is
// offline) with a warning downgrade when the latest beam record reports
// a position mismatch. The Monitor sweeps the fleet periodically and
// emits capped, deduplicated offline alerts.
package status
