package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	emailsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/email"
	inmemdb "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/inmem"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

func TestService_Send(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	attendance.NowFunc = func() time.Time { return now }
	notification.NowFunc = func() time.Time { return now }
	t.Cleanup(func() {
		attendance.NowFunc = time.Now
		notification.NowFunc = time.Now
	})

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	db := inmemdb.Open()
	studentRepo := inmemdb.NewStudentRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)
	studentSvc := student.NewService(studentRepo)
	attSvc := attendance.NewService(
		attRepo, studentSvc, class.NewService(inmemdb.NewClassRepository(db)), risk.DefaultThresholds, time.UTC,
	)
	svc := notification.NewService(inmemdb.NewNotificationRepository(db), studentSvc, attSvc, mailSvc)

	alice := testutil.CreateStudent(t, studentRepo, 1, "Alice", "alice@example.com", "C1")
	bruno := testutil.CreateStudent(t, studentRepo, 1, "Bruno", "bruno@example.com", "C2")
	testutil.CreateStudent(t, studentRepo, 1, "No Email", "", "C3")
	testutil.CheckIn(t, attRepo, alice, now.AddDate(0, 0, -1))
	testutil.CheckIn(t, attRepo, bruno, now.AddDate(0, 0, -20))

	t.Run("all students", func(t *testing.T) {
		mailSvc.Reset()
		res, err := svc.Send(ctx, 1, "Alliance", "owner@example.com", notification.NewNotification{
			Subject: "Closed Monday", Message: "No classes on Monday.",
			NotificationType: notification.TypeGeneral, RecipientType: notification.RecipientsStudents,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.RecipientCount)
		assert.Equal(t, "Email sent to 2 recipients", res.Notification)

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 2)
		for _, msg := range sent {
			require.Len(t, msg.To, 1)
			assert.Contains(t, msg.TextContent, "No classes on Monday.")
			assert.Contains(t, msg.TextContent, "Alliance")
			if assert.NotNil(t, msg.ReplyTo) {
				assert.Equal(t, "owner@example.com", msg.ReplyTo.Address)
				assert.Equal(t, "Alliance", msg.ReplyTo.Name)
			}
		}
	})

	t.Run("at risk", func(t *testing.T) {
		mailSvc.Reset()
		res, err := svc.Send(ctx, 1, "Alliance", "Coach Rafael", notification.NewNotification{
			Subject: "We miss you", Message: "Come back!", NotificationType: "retention",
			RecipientType: notification.RecipientsAtRisk,
		})
		require.NoError(t, err)
		// the student without email is at risk too but cannot be reached
		assert.Equal(t, 1, res.RecipientCount)
		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "bruno@example.com", sent[0].To[0].Address)
		assert.Nil(t, sent[0].ReplyTo) // sent by an admin without email
	})

	t.Run("custom", func(t *testing.T) {
		mailSvc.Reset()
		res, err := svc.Send(ctx, 1, "Alliance", "owner@example.com", notification.NewNotification{
			Subject: "Seminar", Message: "Seminar on Saturday.", NotificationType: notification.TypeGeneral,
			RecipientType: notification.RecipientsCustom, RecipientCount: 12,
		})
		require.NoError(t, err)
		assert.Equal(t, 12, res.RecipientCount)
		assert.Empty(t, mailSvc.SentMessages())
	})

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Seminar", history[0].Subject)
	assert.Equal(t, "owner@example.com", history[0].SentBy)
	assert.Equal(t, "retention", history[1].NotificationType)
	assert.Equal(t, 2, history[2].RecipientCount)

	n, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = svc.Count(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewNotification_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)

	nn := notification.NewNotification{Subject: " Hi ", Message: "Hello"}
	require.NoError(t, nn.Validate(validate))
	assert.Equal(t, "Hi", nn.Subject)
	assert.Equal(t, notification.TypeGeneral, nn.NotificationType)
	assert.Equal(t, notification.RecipientsStudents, nn.RecipientType)

	nn = notification.NewNotification{Subject: "Hi", Message: "Hello", RecipientType: "everyone"}
	assert.Error(t, nn.Validate(validate))

	nn = notification.NewNotification{Message: "Hello"}
	assert.Error(t, nn.Validate(validate))
}
