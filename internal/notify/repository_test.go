package notify

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the notifications table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			module_id  INTEGER,
			kind       TEXT NOT NULL,
			category   TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			is_read    INTEGER NOT NULL DEFAULT 0,
			important  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			read_at    TEXT
		) STRICT;
		CREATE INDEX idx_notifications_dedup ON notifications(user_id, module_id, category, created_at);
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

func i64(v int64) *int64 { return &v }

func TestSQLiteRepository_Insert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	n := NewOfflineAlert(1, 7, "north-tower-1")
	if err := repo.Insert(ctx, n); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if n.ID == 0 {
		t.Error("Insert() did not set ID")
	}
	if n.CreatedAt.IsZero() {
		t.Error("Insert() did not set CreatedAt")
	}

	bad := &Notification{UserID: 1, Kind: "urgent", Category: "x", Title: "t", Body: "b"}
	if err := repo.Insert(ctx, bad); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("Insert(invalid kind) error = %v, want ErrInvalidKind", err)
	}
}

func TestSQLiteRepository_ExistsForDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	noon := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	n := NewOfflineAlert(1, 7, "m")
	n.CreatedAt = noon
	if err := repo.Insert(ctx, n); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tests := []struct {
		name     string
		userID   int64
		moduleID *int64
		category string
		at       time.Time
		want     bool
	}{
		{"same day same key", 1, i64(7), CategoryAlert, noon.Add(3 * time.Hour), true},
		{"end of same day", 1, i64(7), CategoryAlert, time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC), true},
		{"next day", 1, i64(7), CategoryAlert, noon.Add(24 * time.Hour), false},
		{"previous day", 1, i64(7), CategoryAlert, noon.Add(-24 * time.Hour), false},
		{"different module", 1, i64(8), CategoryAlert, noon, false},
		{"different user", 2, i64(7), CategoryAlert, noon, false},
		{"different category", 1, i64(7), "reset", noon, false},
		{"nil module", 1, nil, CategoryAlert, noon, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsForDay(ctx, tt.userID, tt.moduleID, tt.category, tt.at)
			if err != nil {
				t.Fatalf("ExistsForDay() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExistsForDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSQLiteRepository_ListUnreadAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	first := NewOfflineAlert(1, 7, "m")
	first.CreatedAt = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	second := NewOfflineAlert(1, 8, "n")
	second.CreatedAt = time.Date(2026, 8, 15, 11, 0, 0, 0, time.UTC)

	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.Insert(ctx, second); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	unread, err := repo.ListUnread(ctx, 1)
	if err != nil {
		t.Fatalf("ListUnread() error = %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("ListUnread() returned %d, want 2", len(unread))
	}
	if unread[0].ID != second.ID {
		t.Errorf("ListUnread() first = %d, want newest %d", unread[0].ID, second.ID)
	}

	if err := repo.MarkRead(ctx, first.ID, time.Now()); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	unread, err = repo.ListUnread(ctx, 1)
	if err != nil {
		t.Fatalf("ListUnread() error = %v", err)
	}
	if len(unread) != 1 || unread[0].ID != second.ID {
		t.Errorf("ListUnread() after MarkRead = %+v, want only %d", unread, second.ID)
	}

	if err := repo.MarkRead(ctx, 9999, time.Now()); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("MarkRead(missing) error = %v, want ErrNotificationNotFound", err)
	}
}
