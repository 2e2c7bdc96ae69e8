package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
)

var nowFunc = time.Now // mockable

type classApi struct {
	svc      class.Service
	validate *validator.Validate
	loc      *time.Location
}

func registerClassAPI(authed *echo.Group, deps ServerDeps) {
	api := classApi{svc: deps.ClassSvc, validate: deps.Validate, loc: deps.Location}

	authed.GET("/classes", api.queryClasses)
	authed.POST("/classes", api.createClass)
	authed.DELETE("/classes/:id", api.deleteClass)

	authed.GET("/schedules", api.querySchedules)
	authed.POST("/schedules", api.createSchedule)
	authed.DELETE("/schedules/:id", api.deleteSchedule)

	authed.GET("/current-class", api.currentClass)
}

func (api *classApi) queryClasses(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) createClass(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.CreateClass(ctx.Request().Context(), usr.GymID, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) deleteClass(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteClass(ctx.Request().Context(), usr.GymID, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Class deleted successfully"})
}

func (api *classApi) querySchedules(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	schedules, err := api.svc.QuerySchedules(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *classApi) createSchedule(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	var data class.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateSchedule(ctx.Request().Context(), usr.GymID, data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *classApi) deleteSchedule(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSchedule(ctx.Request().Context(), usr.GymID, id); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Schedule deleted successfully"})
}

func (api *classApi) currentClass(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	current, err := api.svc.CurrentClass(ctx.Request().Context(), usr.GymID, nowFunc().In(api.loc))
	if err != nil {
		return errors.Wrap(err, "getting current class")
	}
	return ctx.JSON(http.StatusOK, current)
}
