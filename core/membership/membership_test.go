package membership

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adelynn = AccessCode{Code: "Adelynn14", Plan: PlanProfessional, TrialDays: 30, DiscountPercent: decimal.Zero}
	starter = AccessCode{Code: "STARTER", Plan: PlanStarter, TrialDays: 14, DiscountPercent: decimal.NewFromInt(10)}
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestCodeTable_Resolve(t *testing.T) {
	exact, err := NewCodeTable(MatchExact, adelynn, starter)
	require.NoError(t, err)
	upper, err := NewCodeTable(MatchUpper, adelynn, starter)
	require.NoError(t, err)

	// Case handling is a deployment choice: "exact" only matches "Adelynn14" as written,
	// "upper" upper-cases the input and the keys. Both policies are pinned here.
	tests := []struct {
		name    string
		table   *CodeTable
		code    string
		want    AccessCode
		wantErr error
	}{
		{name: "exact: same case", table: exact, code: "Adelynn14", want: adelynn},
		{name: "exact: lower case rejected", table: exact, code: "adelynn14", wantErr: ErrCodeNotFound},
		{name: "exact: upper case rejected", table: exact, code: "ADELYNN14", wantErr: ErrCodeNotFound},
		{name: "exact: unknown", table: exact, code: "FREE", wantErr: ErrCodeNotFound},
		{name: "exact: empty", table: exact, code: "", wantErr: ErrCodeNotFound},
		{name: "upper: same case", table: upper, code: "Adelynn14", want: adelynn},
		{name: "upper: lower case accepted", table: upper, code: "adelynn14", want: adelynn},
		{name: "upper: mixed case accepted", table: upper, code: "StArTeR", want: starter},
		{name: "upper: unknown", table: upper, code: "FREE", wantErr: ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.table.Resolve(tt.code)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Code, got.Code)
			assert.Equal(t, tt.want.Plan, got.Plan)
			assert.Equal(t, tt.want.TrialDays, got.TrialDays)
		})
	}
}

func TestNewCodeTable_invalid(t *testing.T) {
	tests := []struct {
		name   string
		policy MatchPolicy
		codes  []AccessCode
	}{
		{name: "unknown policy", policy: "lower", codes: []AccessCode{adelynn}},
		{name: "negative trial", codes: []AccessCode{{Code: "X", Plan: PlanStarter, TrialDays: -1}}},
		{name: "unknown plan", codes: []AccessCode{{Code: "X", Plan: "gold"}}},
		{name: "blank code", codes: []AccessCode{{Code: " ", Plan: PlanStarter}}},
		{name: "discount above 100", codes: []AccessCode{{Code: "X", Plan: PlanStarter, DiscountPercent: decimal.NewFromInt(101)}}},
		{name: "negative discount", codes: []AccessCode{{Code: "X", Plan: PlanStarter, DiscountPercent: decimal.NewFromInt(-5)}}},
		{
			name:   "duplicate under upper policy",
			policy: MatchUpper,
			codes:  []AccessCode{{Code: "gym", Plan: PlanStarter}, {Code: "GYM", Plan: PlanEnterprise}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodeTable(tt.policy, tt.codes...)
			assert.Equal(t, ErrInvalidInput, errors.Cause(err))
		})
	}

	// same codes are distinct keys under the exact policy
	_, err := NewCodeTable(MatchExact, AccessCode{Code: "gym", Plan: PlanStarter}, AccessCode{Code: "GYM", Plan: PlanEnterprise})
	assert.NoError(t, err)
}

func TestComputeTrialEnd(t *testing.T) {
	createdAt := mustDate(t, "2024-01-01T00:00:00Z")

	got, err := ComputeTrialEnd(createdAt, 14)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-01-15T00:00:00Z"), got)

	// trialEnd - createdAt is exactly trialDays days, across month, leap day and year ends
	starts := []time.Time{
		createdAt,
		mustDate(t, "2024-02-20T17:45:12Z"),
		mustDate(t, "2023-12-31T23:59:59Z"),
		time.Date(2024, time.March, 30, 12, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}
	for _, start := range starts {
		for _, days := range []int{0, 1, 7, 14, 30, 365} {
			end, err := ComputeTrialEnd(start, days)
			require.NoError(t, err)
			assert.Equal(t, time.Duration(days)*24*time.Hour, end.Sub(start), "start %s, %d days", start, days)
		}
	}

	_, err = ComputeTrialEnd(createdAt, -1)
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))
}

func TestClassifyStatus(t *testing.T) {
	trialEnd := mustDate(t, "2024-01-15T00:00:00Z")

	tests := []struct {
		name     string
		now      time.Time
		trialEnd time.Time
		reported Status
		want     Status
		wantErr  error
	}{
		{name: "one second before end", now: mustDate(t, "2024-01-14T23:59:59Z"), trialEnd: trialEnd, want: StatusTrial},
		{name: "exactly at end", now: trialEnd, trialEnd: trialEnd, want: StatusPastDue},
		{name: "after end", now: mustDate(t, "2024-03-01T00:00:00Z"), trialEnd: trialEnd, want: StatusPastDue},
		{name: "stored trial, still running", now: mustDate(t, "2024-01-02T00:00:00Z"), trialEnd: trialEnd, reported: StatusTrial, want: StatusTrial},
		{name: "stored trial, lapsed", now: trialEnd, trialEnd: trialEnd, reported: StatusTrial, want: StatusPastDue},
		{name: "billing active during trial", now: mustDate(t, "2024-01-02T00:00:00Z"), trialEnd: trialEnd, reported: StatusActive, want: StatusActive},
		{name: "billing active after trial", now: mustDate(t, "2024-06-01T00:00:00Z"), trialEnd: trialEnd, reported: StatusActive, want: StatusActive},
		{name: "billing past_due", now: mustDate(t, "2024-01-02T00:00:00Z"), trialEnd: trialEnd, reported: StatusPastDue, want: StatusPastDue},
		{name: "billing canceled", now: mustDate(t, "2024-01-02T00:00:00Z"), trialEnd: trialEnd, reported: StatusCanceled, want: StatusCanceled},
		{name: "billing active without trial end", now: trialEnd, reported: StatusActive, want: StatusActive},
		{name: "trial without end", now: trialEnd, wantErr: ErrInvalidInput},
		{name: "unknown status", now: trialEnd, trialEnd: trialEnd, reported: "paused", wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyStatus(tt.now, tt.trialEnd, tt.reported)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// no hidden state: same inputs, same output
			again, err := ClassifyStatus(tt.now, tt.trialEnd, tt.reported)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestClassifyStatus_halfOpenInterval(t *testing.T) {
	trialEnd := mustDate(t, "2024-01-15T00:00:00Z")
	for offset := -48 * time.Hour; offset <= 48*time.Hour; offset += 90 * time.Minute {
		now := trialEnd.Add(offset)
		got, err := ClassifyStatus(now, trialEnd, "")
		require.NoError(t, err)
		if now.Before(trialEnd) {
			assert.Equal(t, StatusTrial, got, "now %s", now)
		} else {
			assert.Equal(t, StatusPastDue, got, "now %s", now)
		}
	}
}

func TestSubscription(t *testing.T) {
	table, err := NewCodeTable(MatchExact, starter)
	require.NoError(t, err)
	code, err := table.Resolve("STARTER")
	require.NoError(t, err)

	createdAt := mustDate(t, "2024-01-01T00:00:00Z")
	sub, err := NewSubscription(code, createdAt)
	require.NoError(t, err)
	assert.Equal(t, PlanStarter, sub.Plan)
	assert.Equal(t, StatusTrial, sub.Status)
	assert.Equal(t, mustDate(t, "2024-01-15T00:00:00Z"), sub.TrialEnd)

	st, err := sub.CurrentStatus(mustDate(t, "2024-01-14T23:59:59Z"))
	require.NoError(t, err)
	assert.Equal(t, StatusTrial, st)

	st, err = sub.CurrentStatus(mustDate(t, "2024-01-15T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, StatusPastDue, st)

	_, err = sub.CurrentStatus(createdAt.Add(-time.Second))
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))

	assert.Equal(t, 13, sub.TrialDaysRemaining(mustDate(t, "2024-01-01T12:00:00Z")))
	assert.Equal(t, 0, sub.TrialDaysRemaining(mustDate(t, "2024-01-15T00:00:00Z")))

	_, err = NewSubscription(AccessCode{Code: "X", Plan: PlanStarter, TrialDays: -3}, createdAt)
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		wantErr  error
	}{
		{from: StatusTrial, to: StatusActive},
		{from: StatusTrial, to: StatusPastDue},
		{from: StatusTrial, to: StatusTrial},
		{from: StatusTrial, to: StatusCanceled, wantErr: ErrInvalidTransition},
		{from: StatusActive, to: StatusPastDue},
		{from: StatusPastDue, to: StatusActive},
		{from: StatusActive, to: StatusActive},
		{from: StatusActive, to: StatusCanceled},
		{from: StatusPastDue, to: StatusCanceled},
		{from: StatusCanceled, to: StatusCanceled},
		{from: StatusCanceled, to: StatusActive, wantErr: ErrInvalidTransition},
		{from: StatusActive, to: StatusTrial, wantErr: ErrInvalidTransition},
		{from: StatusActive, to: "paused", wantErr: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestPriceList(t *testing.T) {
	prices, err := ParsePriceList(map[string]string{"starter": "99.50"})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("99.50").Equal(prices[PlanStarter]))
	assert.True(t, decimal.NewFromInt(197).Equal(prices.MonthlyValue(adelynn)))
	assert.True(t, decimal.RequireFromString("89.55").Equal(prices.MonthlyValue(starter)))

	_, err = ParsePriceList(map[string]string{"gold": "10"})
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))
	_, err = ParsePriceList(map[string]string{"starter": "ten"})
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))
	_, err = ParsePriceList(map[string]string{"starter": "-1"})
	assert.Equal(t, ErrInvalidInput, errors.Cause(err))
}
