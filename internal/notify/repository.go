package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines the interface for notification persistence.
type Repository interface {
	// Insert appends a notification row, setting ID and CreatedAt.
	Insert(ctx context.Context, n *Notification) error

	// ExistsForDay reports whether a notification already exists for
	// the user, module and category within the UTC calendar day of at.
	ExistsForDay(ctx context.Context, userID int64, moduleID *int64, category string, at time.Time) (bool, error)

	// ListUnread retrieves a user's unread notifications, newest first.
	ListUnread(ctx context.Context, userID int64) ([]Notification, error)

	// MarkRead marks a notification as read.
	// Returns ErrNotificationNotFound if the notification does not exist.
	MarkRead(ctx context.Context, id int64, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

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

// Insert appends a notification row.
func (r *SQLiteRepository) Insert(ctx context.Context, n *Notification) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, n.Kind)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO notifications (user_id, module_id, kind, category, title, body, is_read, important, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		n.UserID, n.ModuleID, string(n.Kind), n.Category, n.Title, n.Body,
		n.Read, n.Important, fmtTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	n.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading notification id: %w", err)
	}
	return nil
}

// ExistsForDay reports whether a matching notification exists within the
// UTC calendar day of at. RFC3339 UTC text compares lexically in
// chronological order, so the day is a half-open text range.
func (r *SQLiteRepository) ExistsForDay(ctx context.Context, userID int64, moduleID *int64, category string, at time.Time) (bool, error) {
	day := at.UTC().Truncate(24 * time.Hour)
	start := fmtTime(day)
	end := fmtTime(day.Add(24 * time.Hour))

	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = ?
				AND module_id IS ?
				AND category = ?
				AND created_at >= ? AND created_at < ?
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, moduleID, category, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking notification dedup: %w", err)
	}
	return exists, nil
}

// ListUnread retrieves a user's unread notifications, newest first.
func (r *SQLiteRepository) ListUnread(ctx context.Context, userID int64) ([]Notification, error) {
	query := `
		SELECT id, user_id, module_id, kind, category, title, body, is_read, important, created_at, read_at
		FROM notifications
		WHERE user_id = ? AND is_read = 0
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var (
			n       Notification
			kind    string
			created string
			readAt  *string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.ModuleID, &kind, &n.Category,
			&n.Title, &n.Body, &n.Read, &n.Important, &created, &readAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Kind = Kind(kind)
		if n.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if readAt != nil {
			t, err := parseTime(*readAt)
			if err != nil {
				return nil, err
			}
			n.ReadAt = &t
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (r *SQLiteRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = 1, read_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, fmtTime(at), id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking mark read result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
