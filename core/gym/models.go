package gym

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
)

// Gym is a tenant: every other record belongs to exactly one gym.
type Gym struct {
	ID           int               `json:"id"`
	Name         string            `json:"gym_name"`
	Subdomain    string            `json:"subdomain"`
	OwnerName    string            `json:"owner_name"`
	OwnerEmail   string            `json:"owner_email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Plan         membership.Plan   `json:"subscription_plan"`
	Status       membership.Status `json:"subscription_status"` // as last stored; see Subscription
	TrialEnd     time.Time         `json:"trial_end"`           // UTC
	AccessCode   string            `json:"access_code"`
	MonthlyValue decimal.Decimal   `json:"monthly_value"`
	CreatedAt    time.Time         `json:"created_at"` // UTC
	UpdatedAt    time.Time         `json:"updated_at"` // UTC
}

func (g Gym) Subscription() membership.Subscription {
	return membership.Subscription{Plan: g.Plan, Status: g.Status, TrialEnd: g.TrialEnd, CreatedAt: g.CreatedAt}
}

type Info struct {
	GymName    string `json:"gym_name" validate:"required,max=100"`
	OwnerName  string `json:"owner_name" validate:"required,max=200"`
	OwnerEmail string `json:"owner_email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Address    string `json:"address" validate:"omitempty,max=300"`
}

type RedeemRequest struct {
	AccessCode string `json:"access_code" validate:"required,max=100"`
	GymInfo    Info   `json:"gym_info"`
}

func (rr *RedeemRequest) Validate(validate *validator.Validate) error {
	rr.AccessCode = core.CleanString(rr.AccessCode)
	rr.GymInfo.GymName = core.CleanString(rr.GymInfo.GymName)
	rr.GymInfo.OwnerName = core.CleanString(rr.GymInfo.OwnerName)
	rr.GymInfo.OwnerEmail = core.CleanString(rr.GymInfo.OwnerEmail, true /* lower */)
	rr.GymInfo.Phone = core.CleanString(rr.GymInfo.Phone)
	rr.GymInfo.Address = core.CleanString(rr.GymInfo.Address)
	return validate.Struct(rr)
}

// RedeemResult is returned once, right after the tenant is created: it is the only time
// the generated owner password is disclosed.
type RedeemResult struct {
	GymID          int               `json:"gym_id"`
	GymName        string            `json:"gym_name"`
	Subdomain      string            `json:"subdomain"`
	DashboardURL   string            `json:"dashboard_url"`
	Plan           membership.Plan   `json:"plan"`
	TrialDays      int               `json:"trial_days"`
	TrialEnd       time.Time         `json:"trial_end"`
	Status         membership.Status `json:"status"`
	AdminPassword  string            `json:"admin_password"`
	AdminCardCode  string            `json:"admin_card_code"`
	AccessCodeUsed string            `json:"access_code_used"`
	MonthlyValue   decimal.Decimal   `json:"monthly_value"`
}

type SubscriptionInfo struct {
	GymID              int               `json:"gym_id"`
	GymName            string            `json:"gym_name"`
	Plan               membership.Plan   `json:"plan"`
	Status             membership.Status `json:"status"`
	TrialEnd           time.Time         `json:"trial_end"`
	TrialDaysRemaining int               `json:"trial_days_remaining"`
	MonthlyValue       decimal.Decimal   `json:"monthly_value"`
}

// BillingEvent is a status change reported by the billing collaborator.
type BillingEvent struct {
	GymID  int               `json:"gym_id" validate:"required,min=1"`
	Status membership.Status `json:"status" validate:"required,oneof=trial active past_due canceled"`
}

func (be *BillingEvent) Validate(validate *validator.Validate) error {
	be.Status = membership.Status(core.CleanString(string(be.Status), true /* lower */))
	return validate.Struct(be)
}
