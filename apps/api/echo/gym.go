package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
)

type gymApi struct {
	svc      gym.Service
	validate *validator.Validate
}

func registerGymAPI(g, authed *echo.Group, deps ServerDeps) {
	api := gymApi{svc: deps.GymSvc, validate: deps.Validate}

	g.POST("/redeem-access-code", api.redeem)
	g.POST("/billing/events", api.billingEvent, sharedSecretMiddleware(deps.Conf.Server.BillingWebhookSecret))

	authed.GET("/subscription", api.subscription)
}

func (api *gymApi) redeem(ctx echo.Context) error {
	var data gym.RedeemRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RedeemRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Redeem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "redeeming access code")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *gymApi) subscription(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	info, err := api.svc.Subscription(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "getting subscription")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *gymApi) billingEvent(ctx echo.Context) error {
	var data gym.BillingEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BillingEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	info, err := api.svc.ApplyBillingEvent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "applying billing event")
	}
	return ctx.JSON(http.StatusOK, info)
}
