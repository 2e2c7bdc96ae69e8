package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

var features = []string{
	"students", "classes", "schedules", "attendance", "analytics", "risk-analysis", "communications", "system-status",
}

type (
	systemApi struct {
		deps ServerDeps
	}

	HealthResponse struct {
		Status    string    `json:"status"`
		Version   string    `json:"version"`
		Timestamp time.Time `json:"timestamp"`
		Database  string    `json:"database"`
		Features  []string  `json:"features"`
	}

	SystemStatus struct {
		Status         string     `json:"status"`
		DatabaseStatus string     `json:"database_status"`
		APIVersion     string     `json:"api_version"`
		TotalStudents  int        `json:"total_students"`
		TotalClasses   int        `json:"total_classes"`
		TotalCheckins  int        `json:"total_checkins"`
		TotalEmails    int        `json:"total_emails"`
		LastBackup     *time.Time `json:"last_backup"`
	}

	BackupResponse struct {
		Message        string    `json:"message"`
		BackupFilename string    `json:"backup_filename"`
		BackupTime     time.Time `json:"backup_time"`
		BackupSize     int64     `json:"backup_size"`
	}
)

func registerSystemAPI(g, authed *echo.Group, deps ServerDeps) {
	api := systemApi{deps: deps}

	g.GET("/health", api.health)

	authed.GET("/system-status", api.status)
	authed.POST("/backup", api.backup, roleMiddleware(user.RoleOwner))
}

func (api *systemApi) dbStatus(ctx echo.Context) string {
	if api.deps.DBCheck == nil {
		return "connected"
	}
	if err := api.deps.DBCheck(ctx.Request().Context()); err != nil {
		api.deps.Logger.Error("checking database", err)
		return "disconnected"
	}
	return "connected"
}

func (api *systemApi) health(ctx echo.Context) error {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   api.deps.Conf.Build,
		Timestamp: nowFunc().UTC(),
		Database:  api.dbStatus(ctx),
		Features:  features,
	}
	code := http.StatusOK
	if resp.Database != "connected" {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, resp)
}

func (api *systemApi) status(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	st := SystemStatus{
		Status:         "operational",
		DatabaseStatus: api.dbStatus(ctx),
		APIVersion:     api.deps.Conf.Build,
	}
	if st.TotalStudents, err = api.deps.StudentSvc.Count(rctx, usr.GymID); err != nil {
		return errors.Wrap(err, "counting students")
	}
	if st.TotalClasses, err = api.deps.ClassSvc.CountClasses(rctx, usr.GymID); err != nil {
		return errors.Wrap(err, "counting classes")
	}
	if st.TotalCheckins, err = api.deps.AttendanceSvc.Count(rctx, usr.GymID); err != nil {
		return errors.Wrap(err, "counting check-ins")
	}
	if st.TotalEmails, err = api.deps.NotificationSvc.Count(rctx, usr.GymID); err != nil {
		return errors.Wrap(err, "counting notifications")
	}

	b, err := api.deps.BackupSvc.Last(rctx, usr.GymID)
	switch errors.Cause(err) {
	case nil:
		st.LastBackup = &b.CreatedAt
	case backup.ErrNotFound:
	default:
		return errors.Wrap(err, "getting last backup")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *systemApi) backup(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	b, err := api.deps.BackupSvc.Create(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "creating backup")
	}
	return ctx.JSON(http.StatusCreated, BackupResponse{
		Message:        "Backup created successfully",
		BackupFilename: b.Filename,
		BackupTime:     b.CreatedAt,
		BackupSize:     b.Size,
	})
}
