package echoapi

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

// contextUser returns the admin loaded by activeUserMiddleware.
func contextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errors.Wrap(errUsrNotFoundInCtx, "retrieving user from context")
}

const billingSecretHeader = "X-Billing-Secret"

// roleMiddleware lets through the admins whose role has at least the priority of `role`.
// It runs after activeUserMiddleware.
func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := contextUser(ctx)
			if err != nil {
				return err
			}
			if user.RolePriority(usr.Role) >= user.RolePriority(role) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// activeUserMiddleware loads the admin of the token and refuses deactivated accounts.
func activeUserMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}

// sharedSecretMiddleware authenticates server-to-server calls carrying `secret` in the
// X-Billing-Secret header. An empty secret disables the route.
func sharedSecretMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			got := ctx.Request().Header.Get(billingSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return errInvalidSignature
			}
			return next(ctx)
		}
	}
}
