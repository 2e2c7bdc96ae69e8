package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

func Test_newAppHTTPErrorHandler(t *testing.T) {
	conf := testutil.NewConfig()
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)

	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantBody     string
		wantShutdown bool
	}{
		{
			name:     "validator errors",
			err:      errors.Wrap(validate.Struct(&gym.RedeemRequest{GymInfo: gym.Info{GymName: "Checkmat", OwnerName: "Rita", OwnerEmail: "rita@checkmat.test"}}), "redeeming"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"access_code":"this field is required"}`,
		},
		{
			name:     "field error",
			err:      errors.Wrap(core.NewFieldError("email", user.ErrEmailExists), "creating user"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"email":"` + user.ErrEmailExists.Error() + `"}`,
		},
		{
			name:     "domain error with message",
			err:      errors.Wrap(membership.ErrCodeNotFound, "redeeming"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid access code"}`,
		},
		{
			name:     "domain error without message",
			err:      errors.Wrap(user.ErrLockedOut, "authenticating"),
			wantCode: http.StatusTooManyRequests,
			wantBody: `{"error":"` + user.ErrLockedOut.Error() + `"}`,
		},
		{name: "http error", err: errHttpNotFound, wantCode: http.StatusNotFound, wantBody: `{"error":"not found"}`},
		{name: "server error", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantBody: `{"error":"Internal Server Error"}`},
		{
			name:         "shutdown",
			err:          errors.Wrap(core.NewShutdownError("sql: connection is already closed"), "querying students"),
			wantCode:     http.StatusInternalServerError,
			wantBody:     `{"error":"Internal Server Error"}`,
			wantShutdown: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shutdown bool
			handler := newAppHTTPErrorHandler(testutil.NewLogger(conf), translator, func() { shutdown = true })

			e := echo.New()
			rec := httptest.NewRecorder()
			ctx := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

			assert.NotPanics(t, func() { handler(tt.err, ctx) })
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantShutdown, shutdown)
		})
	}
}
