package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/modulo-iot/modulocore/internal/notify"
)

// handleListNotifications returns a user's unread notifications.
// The user is selected with the user_id query parameter.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID < 1 {
		writeBadRequest(w, "user_id query parameter is required")
		return
	}

	notifications, err := s.notify.ListUnread(r.Context(), userID)
	if err != nil {
		s.logger.Error("listing notifications failed", "user_id", userID, "error", err)
		writeInternalError(w, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []notify.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}

// handleMarkNotificationRead marks one notification as read.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeBadRequest(w, "invalid notification id")
		return
	}

	if err := s.notify.MarkRead(r.Context(), id, time.Now()); err != nil {
		if errors.Is(err, notify.ErrNotificationNotFound) {
			writeNotFound(w, "notification not found")
			return
		}
		s.logger.Error("marking notification read failed", "id", id, "error", err)
		writeInternalError(w, "failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
