package main

import (
	"log"
	"os"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
	emailsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/email"
	lockoutsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/lockout"
	logsvc "github.com/Jhorne678-blue/BJJ-PRO-GYM/services/logger"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database"
	sqlxrepos "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(false)

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(err.Error(), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(err.Error(), err)
	}

	codes, err := gym.NewCodeTable(conf.Membership)
	if err != nil {
		_ = db.Close()
		logger.Fatal(err.Error(), err)
	}

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	usrRepo := sqlxrepos.NewUserRepository(db)
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(usrRepo, lockoutsvc.NewMemoryStore(conf.Lockout), emailsvc.NewConsoleService(conf, logger), logger, conf),
		usrRepo:  usrRepo,
		gymRepo:  sqlxrepos.NewGymRepository(db),
		codes:    codes,
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
