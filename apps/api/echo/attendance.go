package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
)

type attendanceApi struct {
	svc       attendance.Service
	analytics *analytics.Service
	gyms      gym.Service
	validate  *validator.Validate
}

func registerAttendanceAPI(authed *echo.Group, deps ServerDeps) {
	api := attendanceApi{
		svc:       deps.AttendanceSvc,
		analytics: deps.AnalyticsSvc,
		gyms:      deps.GymSvc,
		validate:  deps.Validate,
	}

	authed.POST("/checkin", api.checkIn)
	authed.GET("/attendance", api.query)
	authed.GET("/risk-analysis", api.riskAnalysis)
	authed.GET("/analytics", api.dashboard)
}

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	var data attendance.CheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckIn")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.CheckIn(ctx.Request().Context(), usr.GymID, data)
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	logs, err := api.svc.QueryRecent(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *attendanceApi) riskAnalysis(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.RiskReport(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "building risk report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *attendanceApi) dashboard(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.gyms.Subscription(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "getting subscription")
	}
	d, err := api.analytics.Dashboard(ctx.Request().Context(), usr.GymID, sub.Plan)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, d)
}
