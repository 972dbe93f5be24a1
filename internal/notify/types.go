package notify

import (
	"fmt"
	"time"
)

// Kind is the visual severity of a notification.
type Kind string

// Notification kinds.
const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// Valid reports whether the kind is one the dashboard renders.
func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindWarning, KindError, KindSuccess:
		return true
	}
	return false
}

// CategoryAlert is the category used for connectivity alerts. One alert
// per user, module and category is emitted per UTC calendar day.
const CategoryAlert = "alerta"

// Notification is a user-facing message row consumed by the dashboard.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	ModuleID  *int64     `json:"module_id,omitempty"`
	Kind      Kind       `json:"kind"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Read      bool       `json:"is_read"`
	Important bool       `json:"important"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// NewOfflineAlert builds the notification emitted when a module is
// classified offline.
func NewOfflineAlert(userID, moduleID int64, moduleName string) *Notification {
	return &Notification{
		UserID:    userID,
		ModuleID:  &moduleID,
		Kind:      KindWarning,
		Category:  CategoryAlert,
		Title:     fmt.Sprintf("Module %s offline", moduleName),
		Body:      fmt.Sprintf("Module %s has not reported a measurement for over 15 minutes.", moduleName),
		Important: true,
	}
}
