package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		Create(ctx context.Context, n Notification) (Notification, error)
		// QueryRecent returns the latest `limit` notifications, newest first.
		QueryRecent(ctx context.Context, gymID, limit int) ([]Notification, error)
		Count(ctx context.Context, gymID int) (int, error)
	}

	Service interface {
		Send(ctx context.Context, gymID int, gymName, sentBy string, nn NewNotification) (SendResult, error)
		History(ctx context.Context, gymID int) ([]Notification, error)
		Count(ctx context.Context, gymID int) (int, error)
	}

	service struct {
		repo       Repository
		students   student.Service
		attendance attendance.Service
		mailSvc    core.EmailService
	}
)

func NewService(repo Repository, students student.Service, att attendance.Service, mailSvc core.EmailService) Service {
	return &service{repo: repo, students: students, attendance: att, mailSvc: mailSvc}
}

// recipients resolves the addresses of a recipient type. Students without an email are skipped.
func (svc *service) recipients(ctx context.Context, gymID int, recipientType string) ([]mail.Address, error) {
	addrs := make([]mail.Address, 0)
	switch recipientType {
	case RecipientsStudents:
		students, err := svc.students.Query(ctx, gymID)
		if err != nil {
			return nil, errors.Wrap(err, "querying students")
		}
		for _, s := range students {
			if s.Email != "" {
				addrs = append(addrs, mail.Address{Name: s.Name, Address: s.Email})
			}
		}
	case RecipientsAtRisk:
		report, err := svc.attendance.RiskReport(ctx, gymID)
		if err != nil {
			return nil, errors.Wrap(err, "building risk report")
		}
		for _, s := range report {
			if s.Email != "" {
				addrs = append(addrs, mail.Address{Name: s.Name, Address: s.Email})
			}
		}
	}
	return addrs, nil
}

func (svc *service) Send(ctx context.Context, gymID int, gymName, sentBy string, nn NewNotification) (SendResult, error) {
	addrs, err := svc.recipients(ctx, gymID, nn.RecipientType)
	if err != nil {
		return SendResult{}, err
	}

	count := len(addrs)
	if nn.RecipientType == RecipientsCustom {
		count = nn.RecipientCount
	}

	// replies go to the sending admin when they have an email
	var replyTo *mail.Address
	if addr, err := mail.ParseAddress(sentBy); err == nil {
		replyTo = &mail.Address{Name: gymName, Address: addr.Address}
	}

	// one message per recipient so that addresses are not disclosed
	msgs := make([]*core.EmailMessage, 0, len(addrs))
	for _, addr := range addrs {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{addr},
			ReplyTo:      replyTo,
			Subject:      nn.Subject,
			TemplateName: "notification",
			TemplateData: map[string]interface{}{
				"Message": nn.Message,
				"GymName": gymName,
			},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}

	n := Notification{
		GymID:            gymID,
		Subject:          nn.Subject,
		Message:          nn.Message,
		RecipientCount:   count,
		SentBy:           sentBy,
		SentAt:           NowFunc().UTC(),
		NotificationType: nn.NotificationType,
		RecipientType:    nn.RecipientType,
	}
	if _, err := svc.repo.Create(ctx, n); err != nil {
		return SendResult{}, errors.Wrap(err, "logging notification")
	}

	return SendResult{
		Message:        "Email sent successfully",
		RecipientCount: count,
		RecipientType:  nn.RecipientType,
		Notification:   fmt.Sprintf("Email sent to %d recipients", count),
	}, nil
}

func (svc *service) History(ctx context.Context, gymID int) ([]Notification, error) {
	return svc.repo.QueryRecent(ctx, gymID, HistoryLimit)
}

func (svc *service) Count(ctx context.Context, gymID int) (int, error) {
	return svc.repo.Count(ctx, gymID)
}
