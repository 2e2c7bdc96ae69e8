// Package membership decides the trial terms of a redeemed access code and classifies
// the current subscription status of a gym. It performs no I/O.
package membership

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	Plan   string
	Status string
)

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"

	StatusTrial    Status = "trial"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

var (
	// errors
	ErrCodeNotFound      = errors.New("access code not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid subscription status transition")

	Plans = []Plan{PlanStarter, PlanProfessional, PlanEnterprise}

	hundred = decimal.NewFromInt(100)
)

func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusPastDue, StatusCanceled:
		return true
	}
	return false
}

// billingOwned reports whether the status can only have been set by the billing collaborator.
func (s Status) billingOwned() bool {
	return s == StatusActive || s == StatusPastDue || s == StatusCanceled
}

// PriceList maps each plan to its monthly list price.
type PriceList map[Plan]decimal.Decimal

var DefaultPrices = PriceList{
	PlanStarter:      decimal.NewFromInt(97),
	PlanProfessional: decimal.NewFromInt(197),
	PlanEnterprise:   decimal.NewFromInt(397),
}

// ParsePriceList parses {plan: price} strings, falling back to DefaultPrices for missing plans.
func ParsePriceList(raw map[string]string) (PriceList, error) {
	prices := make(PriceList, len(DefaultPrices))
	for plan, price := range DefaultPrices {
		prices[plan] = price
	}
	for name, val := range raw {
		plan := Plan(name)
		if !plan.Valid() {
			return nil, errors.Wrapf(ErrInvalidInput, "unknown plan %q", name)
		}
		price, err := decimal.NewFromString(val)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidInput, "price of plan %q: %v", name, err)
		}
		if price.IsNegative() {
			return nil, errors.Wrapf(ErrInvalidInput, "negative price for plan %q", name)
		}
		prices[plan] = price
	}
	return prices, nil
}

// MonthlyValue is the plan price after the access code discount, rounded to cents.
func (prices PriceList) MonthlyValue(code AccessCode) decimal.Decimal {
	price := prices[code.Plan]
	return price.Mul(hundred.Sub(code.DiscountPercent)).Div(hundred).Round(2)
}

// ComputeTrialEnd returns createdAt + trialDays calendar days (in UTC).
func ComputeTrialEnd(createdAt time.Time, trialDays int) (time.Time, error) {
	if trialDays < 0 {
		return time.Time{}, errors.Wrapf(ErrInvalidInput, "negative trial length: %d days", trialDays)
	}
	return createdAt.UTC().AddDate(0, 0, trialDays), nil
}

// ClassifyStatus returns the current status of a subscription.
// A status reported by billing (active, past_due, canceled) is authoritative.
// Otherwise the trial is the half-open interval [createdAt, trialEnd): at trialEnd it is past_due.
func ClassifyStatus(now, trialEnd time.Time, reported Status) (Status, error) {
	if reported.billingOwned() {
		return reported, nil
	}
	if reported != "" && reported != StatusTrial {
		return "", errors.Wrapf(ErrInvalidInput, "unknown status %q", reported)
	}
	if trialEnd.IsZero() {
		return "", errors.Wrap(ErrInvalidInput, "trial without an end")
	}
	if now.Before(trialEnd) {
		return StatusTrial, nil
	}
	return StatusPastDue, nil
}

// Transition validates an externally reported status change.
// Repeating the current status is accepted as a no-op.
//   trial -> active | past_due
//   active <-> past_due
//   active | past_due -> canceled (terminal)
func Transition(from, to Status) (Status, error) {
	if !to.Valid() {
		return from, errors.Wrapf(ErrInvalidInput, "unknown status %q", to)
	}
	if from == to {
		return to, nil
	}
	switch from {
	case StatusTrial:
		if to == StatusActive || to == StatusPastDue {
			return to, nil
		}
	case StatusActive, StatusPastDue:
		if to == StatusActive || to == StatusPastDue || to == StatusCanceled {
			return to, nil
		}
	}
	return from, errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
}
