package gym

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound        = errors.New("gym not found")
	ErrSubdomainExists = errors.New("a gym with this subdomain already exists")
)

type (
	Repository interface {
		// CreateWithOwner creates the gym and its owner atomically: either both exist
		// afterwards or neither does.
		CreateWithOwner(ctx context.Context, g Gym, owner user.User) (Gym, user.User, error)
		GetByID(ctx context.Context, id int) (Gym, error)
		UpdateStatus(ctx context.Context, id int, status membership.Status, updatedAt time.Time) (Gym, error)
	}

	Service interface {
		// Redeem creates a tenant from an access code. An unknown code writes nothing.
		Redeem(ctx context.Context, req RedeemRequest) (RedeemResult, error)
		GetByID(ctx context.Context, id int) (Gym, error)
		Subscription(ctx context.Context, gymID int) (SubscriptionInfo, error)
		ApplyBillingEvent(ctx context.Context, ev BillingEvent) (SubscriptionInfo, error)
	}

	service struct {
		repo            Repository
		codes           *membership.CodeTable
		prices          membership.PriceList
		mailSvc         core.EmailService
		logger          core.Logger
		dashboardDomain string
	}
)

func NewService(
	repo Repository,
	codes *membership.CodeTable,
	prices membership.PriceList,
	mailSvc core.EmailService,
	logger core.Logger,
	dashboardDomain string,
) Service {
	return &service{
		repo:            repo,
		codes:           codes,
		prices:          prices,
		mailSvc:         mailSvc,
		logger:          logger,
		dashboardDomain: dashboardDomain,
	}
}

// NewCodeTable builds the access code table from the configuration.
func NewCodeTable(conf core.MembershipConfig) (*membership.CodeTable, error) {
	codes := make([]membership.AccessCode, 0, len(conf.AccessCodes))
	for _, c := range conf.AccessCodes {
		discount := decimal.Zero
		if c.DiscountPercent != "" {
			var err error
			if discount, err = decimal.NewFromString(c.DiscountPercent); err != nil {
				return nil, errors.Wrapf(membership.ErrInvalidInput, "access code %q: discount: %v", c.Code, err)
			}
		}
		codes = append(codes, membership.AccessCode{
			Code:            c.Code,
			Plan:            membership.Plan(c.Plan),
			TrialDays:       c.TrialDays,
			DiscountPercent: discount,
			Description:     c.Description,
		})
	}
	return membership.NewCodeTable(membership.MatchPolicy(conf.CodeMatch), codes...)
}

// Subdomain derives a subdomain from the gym name: lower-cased ASCII letters and digits,
// spaces turned into dashes (trimmed at both ends), followed by a random 8 hex characters suffix.
func Subdomain(gymName string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(gymName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('-')
		}
	}
	base := strings.Trim(sb.String(), "-")
	if base == "" {
		base = "gym"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "-" + suffix
}

func (svc *service) DashboardURL(subdomain string) string {
	return "https://" + subdomain + "." + svc.dashboardDomain
}

func (svc *service) Redeem(ctx context.Context, req RedeemRequest) (RedeemResult, error) {
	code, err := svc.codes.Resolve(req.AccessCode)
	if err != nil {
		return RedeemResult{}, err
	}

	now := NowFunc().UTC()
	sub, err := membership.NewSubscription(code, now)
	if err != nil {
		return RedeemResult{}, errors.Wrap(err, "starting subscription")
	}

	g := Gym{
		Name:         req.GymInfo.GymName,
		Subdomain:    Subdomain(req.GymInfo.GymName),
		OwnerName:    req.GymInfo.OwnerName,
		OwnerEmail:   req.GymInfo.OwnerEmail,
		Phone:        req.GymInfo.Phone,
		Address:      req.GymInfo.Address,
		Plan:         sub.Plan,
		Status:       sub.Status,
		TrialEnd:     sub.TrialEnd,
		AccessCode:   code.Code,
		MonthlyValue: svc.prices.MonthlyValue(code),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	password := user.NewPassword()
	owner := user.User{
		Name:      req.GymInfo.OwnerName,
		Email:     req.GymInfo.OwnerEmail,
		CardCode:  user.NewCardCode(),
		Role:      user.RoleOwner,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := owner.SetPassword(password); err != nil {
		return RedeemResult{}, errors.Wrap(err, "hashing owner password")
	}

	g, owner, err = svc.repo.CreateWithOwner(ctx, g, owner)
	if err != nil {
		return RedeemResult{}, errors.Wrap(err, "creating gym")
	}
	svc.logger.Info("gym created", map[string]interface{}{"gym_id": g.ID, "plan": g.Plan, "access_code": code.Code})

	res := RedeemResult{
		GymID:          g.ID,
		GymName:        g.Name,
		Subdomain:      g.Subdomain,
		DashboardURL:   svc.DashboardURL(g.Subdomain),
		Plan:           g.Plan,
		TrialDays:      code.TrialDays,
		TrialEnd:       g.TrialEnd,
		Status:         g.Status,
		AdminPassword:  password,
		AdminCardCode:  owner.CardCode,
		AccessCodeUsed: code.Code,
		MonthlyValue:   g.MonthlyValue,
	}
	svc.sendWelcomeMail(res, owner)
	return res, nil
}

func (svc *service) sendWelcomeMail(res RedeemResult, owner user.User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject:      "Welcome to BJJ Pro Gym",
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{
			"OwnerName":    owner.Name,
			"GymName":      res.GymName,
			"Plan":         res.Plan,
			"TrialEnd":     res.TrialEnd.Format("January 2, 2006"),
			"DashboardURL": res.DashboardURL,
			"CardCode":     res.AdminCardCode,
			"Password":     res.AdminPassword,
		},
	})
}

func (svc *service) GetByID(ctx context.Context, id int) (Gym, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *service) subscriptionInfo(g Gym, now time.Time) (SubscriptionInfo, error) {
	sub := g.Subscription()
	status, err := sub.CurrentStatus(now)
	if err != nil {
		return SubscriptionInfo{}, errors.Wrap(err, "classifying subscription status")
	}
	return SubscriptionInfo{
		GymID:              g.ID,
		GymName:            g.Name,
		Plan:               g.Plan,
		Status:             status,
		TrialEnd:           g.TrialEnd,
		TrialDaysRemaining: sub.TrialDaysRemaining(now),
		MonthlyValue:       g.MonthlyValue,
	}, nil
}

func (svc *service) Subscription(ctx context.Context, gymID int) (SubscriptionInfo, error) {
	g, err := svc.repo.GetByID(ctx, gymID)
	if err != nil {
		return SubscriptionInfo{}, errors.Wrap(err, "finding gym by ID")
	}
	return svc.subscriptionInfo(g, NowFunc().UTC())
}

// ApplyBillingEvent moves the subscription through the status state machine, starting
// from its current (not stored) status. Repeated events are no-ops.
func (svc *service) ApplyBillingEvent(ctx context.Context, ev BillingEvent) (SubscriptionInfo, error) {
	g, err := svc.repo.GetByID(ctx, ev.GymID)
	if err != nil {
		return SubscriptionInfo{}, errors.Wrap(err, "finding gym by ID")
	}
	now := NowFunc().UTC()
	current, err := g.Subscription().CurrentStatus(now)
	if err != nil {
		return SubscriptionInfo{}, errors.Wrap(err, "classifying subscription status")
	}
	next, err := membership.Transition(current, ev.Status)
	if err != nil {
		return SubscriptionInfo{}, err
	}
	if next != g.Status {
		g, err = svc.repo.UpdateStatus(ctx, g.ID, next, now)
		if err != nil {
			return SubscriptionInfo{}, errors.Wrap(err, "updating subscription status")
		}
		svc.logger.Info("subscription status changed", map[string]interface{}{"gym_id": g.ID, "from": current, "to": next})
	}
	return svc.subscriptionInfo(g, now)
}
