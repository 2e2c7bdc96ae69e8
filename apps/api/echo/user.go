package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

type userApi struct {
	conf     *core.Config
	logger   core.Logger
	svc      user.Service
	validate *validator.Validate
}

func registerUserAPI(g, authed *echo.Group, deps ServerDeps) {
	api := userApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	// un-authed endpoints
	g.POST("/login", api.login)
	g.POST("/card-scan", api.cardScan)
	g.POST("/password-reset", api.resetPassword)
	g.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	authed.POST("/token-refresh", api.refreshToken)
	authed.GET("/me", api.me)
	authed.GET("/admins", api.query)
	authed.POST("/admins", api.create, roleMiddleware(user.RoleOwner))
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Login(), data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	return api.loginResponse(ctx, usr)
}

func (api *userApi) cardScan(ctx echo.Context) error {
	var data CardScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CardScanRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.AuthenticateCard(ctx.Request().Context(), data.CardCode)
	if err != nil {
		return errors.Wrap(err, "authenticating card")
	}
	return api.loginResponse(ctx, usr)
}

func (api *userApi) loginResponse(ctx echo.Context, usr user.User) error {
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.logger.Info("admin logged in", usr)
	return ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		AdminInfo:   newAdminInfo(usr),
	})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if cause := errors.Cause(err); !(cause == nil || cause == user.ErrNotFound || cause == user.ErrAccountDeactivated) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, RefreshResponse{AccessToken: token, TokenType: "bearer"})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	users, err := api.svc.QueryByGym(ctx.Request().Context(), usr.GymID)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.GymID = usr.GymID // admins are only added to the owner's gym
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	created, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, created)
}

type (
	// LoginRequest logs in with the card code or the email, and the password.
	LoginRequest struct {
		CardCode string `json:"card_code" validate:"required_without=Email"`
		Email    string `json:"email" validate:"required_without=CardCode,omitempty,email"`
		Password string `json:"password" validate:"required"`
	}

	CardScanRequest struct {
		CardCode string `json:"card_code" validate:"required"`
	}

	AdminInfo struct {
		Name    string `json:"name"`
		Role    string `json:"role"`
		GymName string `json:"gym_name"`
		GymID   int    `json:"gym_id"`
	}

	LoginResponse struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type"`
		AdminInfo   AdminInfo `json:"admin_info"`
	}

	RefreshResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func newAdminInfo(usr user.User) AdminInfo {
	return AdminInfo{Name: usr.Name, Role: usr.Role, GymName: usr.GymName, GymID: usr.GymID}
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.CardCode = core.CleanString(lr.CardCode)
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (lr LoginRequest) Login() string {
	if lr.CardCode != "" {
		return lr.CardCode
	}
	return lr.Email
}

func (cr *CardScanRequest) Validate(validate *validator.Validate) error {
	cr.CardCode = core.CleanString(cr.CardCode)
	return validate.Struct(cr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
