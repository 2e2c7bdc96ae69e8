package inmemdb

import (
	"context"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

// queryNotifications returns the notifications of the gym, oldest first. Must be called with db.mu held.
func (db *DB) queryNotifications(gymID int) []notification.Notification {
	notifs := make([]notification.Notification, 0)
	for _, n := range db.notifications {
		if n.GymID == gymID {
			notifs = append(notifs, n)
		}
	}
	return notifs
}

func (repo *notificationRepository) Create(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = repo.db.nextID("notifications")
	repo.db.notifications = append(repo.db.notifications, n)
	return n, nil
}

func (repo *notificationRepository) QueryRecent(_ context.Context, gymID, limit int) ([]notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notifs := repo.db.queryNotifications(gymID)
	recent := make([]notification.Notification, 0, len(notifs))
	for i := len(notifs) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, notifs[i])
	}
	return recent, nil
}

func (repo *notificationRepository) Count(_ context.Context, gymID int) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.queryNotifications(gymID)), nil
}
