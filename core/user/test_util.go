package user

import (
	"context"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

type serviceMock struct {
	*service
}

// NewServiceMock returns a Service that sends the password reset mail synchronously.
func NewServiceMock(
	repo Repository,
	limiter LoginLimiter,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &serviceMock{service: NewService(repo, limiter, mailSvc, logger, conf).(*service)}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrAccountDeactivated
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeResetToken exposes the password reset token of `usr` to other packages' tests.
func MakeResetToken(conf *core.Config, usr User) (string, error) {
	return newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta).makeToken(usr)
}
