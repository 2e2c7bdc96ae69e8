package testutil

import (
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	logsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/logger"
)

// NewConfig returns the configuration used by tests: the defaults, in test mode.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		Build:                     "test",
		AppName:                   "BJJ Pro Gym",
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:3000",
		DashboardDomain:           "bjjprogym.test",
		DefaultFromEmail:          mail.Address{Name: "BJJ Pro Gym", Address: "noreply@bjjprogym.test"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        24 * time.Hour,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
			CORSAllowOrigins:          []string{"*"},
			CardScanLogin:             true,
			BillingWebhookSecret:      "billing-secret",
		},
		Membership: core.MembershipConfig{
			CodeMatch: "exact",
			AccessCodes: []core.AccessCodeConfig{
				{Code: "Adelynn14", Plan: "professional", TrialDays: 30, DiscountPercent: "0"},
				{Code: "STARTER", Plan: "starter", TrialDays: 14, DiscountPercent: "10"},
			},
		},
		Risk:    core.RiskConfig{LowThreshold: 7, HighThreshold: 14},
		Lockout: core.LockoutConfig{MaxAttempts: 5, Window: 15 * time.Minute, MaxEntries: 1000},
	}
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), conf)
}
