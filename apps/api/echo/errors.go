package echoapi

import (
	"net/http"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidSignature   = echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")

	// domain errors with a fixed status; msg defaults to the error text
	domainErrors = map[error]domainError{
		membership.ErrCodeNotFound:      {http.StatusBadRequest, "invalid access code"},
		membership.ErrInvalidInput:      {code: http.StatusBadRequest},
		membership.ErrInvalidTransition: {code: http.StatusBadRequest},
		gym.ErrSubdomainExists:          {code: http.StatusConflict},
		user.ErrInvalidCredentials:      {http.StatusUnauthorized, "Invalid credentials"},
		user.ErrAccountDeactivated:      {code: http.StatusForbidden},
		user.ErrCardScanDisabled:        {code: http.StatusForbidden},
		user.ErrLockedOut:               {code: http.StatusTooManyRequests},
		core.ErrForbidden:               {code: http.StatusForbidden},
		gym.ErrNotFound:                 {http.StatusNotFound, "Gym not found"},
		user.ErrNotFound:                {http.StatusNotFound, "Admin not found"},
		student.ErrNotFound:             {http.StatusNotFound, "Student not found"},
		class.ErrNotFound:               {http.StatusNotFound, "Class not found"},
		class.ErrScheduleNotFound:       {http.StatusNotFound, "Schedule not found"},
		backup.ErrNotFound:              {http.StatusNotFound, "No backup found"},
	}
)

type domainError struct {
	code int
	msg  string
}

// lookupDomainError only indexes domainErrors with comparable causes; hashing a slice or map panics.
func lookupDomainError(cause error) (domainError, bool) {
	if cause == nil || !reflect.TypeOf(cause).Comparable() {
		return domainError{}, false
	}
	de, ok := domainErrors[cause]
	return de, ok
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if de, ok := lookupDomainError(cause); ok {
				code = de.code
				message = de.msg
				if de.msg == "" {
					message = cause.Error()
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID, _ = claims.AdminID()
				usr.GymID = claims.GymID
				usr.Name = claims.Name
			}
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{"path": ctx.Path()}, usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
