// Package ingest is the telemetry intake pipeline: raw bus messages are
// matched by topic, decoded into typed payloads, and dispatched to
// handlers that write the record store.
//
// The pipeline is deliberately lossy at the edges: unmatched topics,
// malformed payloads and unknown module IDs are logged and dropped. No
// message can crash the consumer loop.
package ingest
