package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

const bodyLimit = "2M"

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
		// Location is the wall clock schedules are read in.
		Location *time.Location

		// DBCheck reports the database health; nil means always healthy.
		DBCheck func(ctx context.Context) error

		UserSvc         user.Service
		GymSvc          gym.Service
		StudentSvc      student.Service
		ClassSvc        class.Service
		AttendanceSvc   attendance.Service
		AnalyticsSvc    *analytics.Service
		NotificationSvc notification.Service
		BackupSvc       *backup.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(
		middleware.Secure(),
		middleware.BodyLimit(bodyLimit),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: conf.Server.CORSAllowOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
	)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(jwtConfig(conf))
	authed := g.Group("", jwt, activeUserMiddleware(s.deps.UserSvc))

	registerSystemAPI(g, authed, s.deps)
	registerUserAPI(g, authed, s.deps)
	registerGymAPI(g, authed, s.deps)
	registerStudentAPI(authed, s.deps)
	registerClassAPI(authed, s.deps)
	registerAttendanceAPI(authed, s.deps)
	registerNotificationAPI(authed, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting server")
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
