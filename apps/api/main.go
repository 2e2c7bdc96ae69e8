package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/Jhorne678-blue/BJJ-PRO-GYM/apps/api/echo"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
	blobsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/blob"
	emailsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/email"
	lockoutsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/lockout"
	logsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/logger"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database"
	sqlxrepos "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("DB"), conf)

	loc, err := conf.Location()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading time zone %q: %v", conf.TimeZone, err), err)
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	mailSvc := emailsvc.New(conf, logger)

	limiter, closeLimiter, err := lockoutsvc.New(conf.Lockout, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up login limiter: %v", err), err)
	}
	defer func() {
		if err = closeLimiter(); err != nil {
			logger.Error("closing login limiter", err)
		}
	}()

	store, err := blobsvc.New(context.Background(), conf.Backup, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up backup store: %v", err), err)
	}

	codes, err := gym.NewCodeTable(conf.Membership)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading access codes: %v", err), err)
	}
	prices, err := membership.ParsePriceList(conf.Membership.PlanPrices)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading plan prices: %v", err), err)
	}
	thresholds := risk.Thresholds{Low: conf.Risk.LowThreshold, High: conf.Risk.HighThreshold}
	if err = thresholds.Validate(); err != nil {
		logger.Fatal(err.Error(), err)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), limiter, mailSvc, logger, conf)
	gymSvc := gym.NewService(sqlxrepos.NewGymRepository(db), codes, prices, mailSvc, logger, conf.DashboardDomain)
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	classSvc := class.NewService(sqlxrepos.NewClassRepository(db))
	attSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), studentSvc, classSvc, thresholds, loc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	class.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			Location:        loc,
			DBCheck:         db.PingContext,
			UserSvc:         usrSvc,
			GymSvc:          gymSvc,
			StudentSvc:      studentSvc,
			ClassSvc:        classSvc,
			AttendanceSvc:   attSvc,
			AnalyticsSvc:    analytics.NewService(studentSvc, classSvc, attSvc, loc),
			NotificationSvc: notification.NewService(sqlxrepos.NewNotificationRepository(db), studentSvc, attSvc, mailSvc),
			BackupSvc:       backup.NewService(sqlxrepos.NewBackupRepository(db), store, logger),
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(context.Background(), db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
