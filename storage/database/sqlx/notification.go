package sqlxrepos

import (
	"context"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
)

const notificationColumns = `id, gym_id, subject, message, recipient_count, sent_by, sent_at,
	notification_type, recipient_type`

type notificationRow struct {
	ID               int       `db:"id"`
	GymID            int       `db:"gym_id"`
	Subject          string    `db:"subject"`
	Message          string    `db:"message"`
	RecipientCount   int       `db:"recipient_count"`
	SentBy           string    `db:"sent_by"`
	SentAt           time.Time `db:"sent_at"`
	NotificationType string    `db:"notification_type"`
	RecipientType    string    `db:"recipient_type"`
}

func notificationRows(rows []notificationRow) []notification.Notification {
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		n := notification.Notification(r)
		n.SentAt = r.SentAt.UTC()
		notifs = append(notifs, n)
	}
	return notifs
}

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) notification.Repository {
	return &notificationRepository{exec: exec}
}

func (repo *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.SentAt = n.SentAt.UTC()
	id, err := insert(ctx, repo.exec, `
		INSERT INTO email_notifications (gym_id, subject, message, recipient_count, sent_by, sent_at,
			notification_type, recipient_type)
		VALUES (:gym_id, :subject, :message, :recipient_count, :sent_by, :sent_at,
			:notification_type, :recipient_type)
		RETURNING id`, notificationRow(n))
	if err != nil {
		return notification.Notification{}, wrapErr(err, "inserting notification")
	}
	n.ID = id
	return n, nil
}

func (repo *notificationRepository) QueryRecent(ctx context.Context, gymID, limit int) ([]notification.Notification, error) {
	var rows []notificationRow
	err := repo.exec.SelectContext(ctx, &rows, `
		SELECT `+notificationColumns+` FROM email_notifications
		WHERE gym_id = $1 ORDER BY sent_at DESC, id DESC LIMIT $2`, gymID, limit)
	if err != nil {
		return nil, wrapErr(err, "querying notifications")
	}
	return notificationRows(rows), nil
}

func (repo *notificationRepository) Count(ctx context.Context, gymID int) (int, error) {
	var n int
	if err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM email_notifications WHERE gym_id = $1`, gymID); err != nil {
		return 0, wrapErr(err, "counting notifications")
	}
	return n, nil
}
