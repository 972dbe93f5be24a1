package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
)

// Notifier creates notifications with per-day deduplication: at most one
// notification per user, module and category per UTC calendar day.
type Notifier struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier backed by the given repository.
func NewNotifier(repo Repository, logger *logging.Logger) *Notifier {
	return &Notifier{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Notify creates the notification unless one with the same user, module
// and category already exists today. Returns true when a row was created.
func (n *Notifier) Notify(ctx context.Context, notification *Notification) (bool, error) {
	now := n.now().UTC()

	exists, err := n.repo.ExistsForDay(ctx, notification.UserID, notification.ModuleID, notification.Category, now)
	if err != nil {
		return false, fmt.Errorf("checking notification dedup: %w", err)
	}
	if exists {
		n.logger.Debug("notification suppressed by daily dedup",
			"user_id", notification.UserID,
			"category", notification.Category)
		return false, nil
	}

	notification.CreatedAt = now
	if err := n.repo.Insert(ctx, notification); err != nil {
		return false, fmt.Errorf("creating notification: %w", err)
	}

	n.logger.Info("notification created",
		"user_id", notification.UserID,
		"category", notification.Category,
		"title", notification.Title)
	return true, nil
}
