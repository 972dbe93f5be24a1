package notify

import "errors"

// Sentinel errors for the notify package.
var (
	// ErrInvalidKind indicates a notification kind the dashboard does
	// not render.
	ErrInvalidKind = errors.New("notify: invalid notification kind")

	// ErrNotificationNotFound indicates a notification ID with no
	// corresponding row.
	ErrNotificationNotFound = errors.New("notify: notification not found")
)
