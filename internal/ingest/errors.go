package ingest

import "errors"

// Sentinel errors for the ingest package.
var (
	// ErrDecode indicates malformed payload bytes. The message is
	// dropped and logged; the consumer continues.
	ErrDecode = errors.New("ingest: payload decode failed")

	// ErrValidation indicates a structurally valid payload missing a
	// required field or carrying an out-of-range value.
	ErrValidation = errors.New("ingest: payload validation failed")

	// ErrUnknownKind indicates a topic MatchTopic could not route.
	ErrUnknownKind = errors.New("ingest: unknown message kind")
)
