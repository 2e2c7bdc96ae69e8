package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
)

type notificationApi struct {
	svc      notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(authed *echo.Group, deps ServerDeps) {
	api := notificationApi{svc: deps.NotificationSvc, validate: deps.Validate}

	authed.POST("/send-email", api.send)
	authed.GET("/email-history", api.history)
}

func (api *notificationApi) send(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sentBy := usr.Email
	if sentBy == "" {
		sentBy = usr.Name
	}
	res, err := api.svc.Send(ctx.Request().Context(), usr.GymID, usr.GymName, sentBy, data)
	if err != nil {
		return errors.Wrap(err, "sending notification")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *notificationApi) history(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	ns, err := api.svc.History(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "querying notification history")
	}
	return ctx.JSON(http.StatusOK, ns)
}
