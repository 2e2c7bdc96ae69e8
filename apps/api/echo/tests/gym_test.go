package tests

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
)

func Test_gymApi_redeem(t *testing.T) {
	f := setup(t)

	info := gym.Info{GymName: "Checkmat Lisboa", OwnerName: "Rita", OwnerEmail: "rita@checkmat.test"}
	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"access_code":"this field is required","gym_name":"this field is required",` +
				`"owner_name":"this field is required","owner_email":"this field is required"}`),
		},
		{
			name: "unknown code", body: marchallObj(t, gym.RedeemRequest{AccessCode: "NOPE", GymInfo: info}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid access code"}),
		},
		{
			name: "case sensitive", body: marchallObj(t, gym.RedeemRequest{AccessCode: "adelynn14", GymInfo: info}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid access code"}),
		},
		{name: "valid code", body: marchallObj(t, gym.RedeemRequest{AccessCode: "Adelynn14", GymInfo: info}), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/redeem-access-code"

		t.Run(tt.name, func(t *testing.T) {
			f.mailSvc.Reset()
			rec := f.serve(t, tt)

			if tt.wantCode != http.StatusCreated {
				assert.Empty(t, f.mailSvc.SentMessages())
				return
			}
			var res gym.RedeemResult
			unmarshal(t, rec, &res)
			assert.Equal(t, membership.PlanProfessional, res.Plan)
			assert.Equal(t, membership.StatusTrial, res.Status)
			assert.Equal(t, 30, res.TrialDays)
			assert.Equal(t, "Adelynn14", res.AccessCodeUsed)
			assert.Regexp(t, `^checkmat-lisboa-[0-9a-f]{8}$`, res.Subdomain)
			assert.NotEmpty(t, res.AdminPassword)
			assert.Len(t, f.mailSvc.SentMessages(), 1)

			// the generated credentials log in
			f.serve(t, httpTest{
				method:   http.MethodPost,
				path:     "/api/login",
				body:     []byte(`{"card_code":"` + res.AdminCardCode + `","password":"` + res.AdminPassword + `"}`),
				wantCode: http.StatusOK,
			})
		})
	}
}

func Test_gymApi_subscription(t *testing.T) {
	f := setup(t)

	f.serve(t, httpTest{method: http.MethodGet, path: "/api/subscription", wantCode: http.StatusUnauthorized})

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/subscription", token: f.ownerToken, wantCode: http.StatusOK})
	var info gym.SubscriptionInfo
	unmarshal(t, rec, &info)
	assert.Equal(t, f.gym.ID, info.GymID)
	assert.Equal(t, membership.PlanProfessional, info.Plan)
	assert.Equal(t, membership.StatusTrial, info.Status)
}

func Test_gymApi_billingEvent(t *testing.T) {
	f := setup(t)

	secret := map[string]string{"X-Billing-Secret": f.conf.Server.BillingWebhookSecret}
	event := func(status membership.Status) []byte {
		return []byte(`{"gym_id":` + strconv.Itoa(f.gym.ID) + `,"status":"` + string(status) + `"}`)
	}

	tests := []struct {
		httpTest
		wantStatus membership.Status
	}{
		{httpTest: httpTest{
			name: "secret required", body: event(membership.StatusActive),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid webhook secret"}),
		}},
		{httpTest: httpTest{
			name: "wrong secret", body: event(membership.StatusActive), header: map[string]string{"X-Billing-Secret": "lol"},
			wantCode: http.StatusUnauthorized,
		}},
		{httpTest: httpTest{name: "invalid status", body: event("lol"), header: secret, wantCode: http.StatusBadRequest}},
		{httpTest: httpTest{
			name: "unknown gym", body: []byte(`{"gym_id":999,"status":"active"}`), header: secret,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Gym not found"}),
		}},
		{
			httpTest:   httpTest{name: "trial to active", body: event(membership.StatusActive), header: secret, wantCode: http.StatusOK},
			wantStatus: membership.StatusActive,
		},
		{httpTest: httpTest{name: "active to trial", body: event(membership.StatusTrial), header: secret, wantCode: http.StatusBadRequest}},
		{
			httpTest:   httpTest{name: "active to canceled", body: event(membership.StatusCanceled), header: secret, wantCode: http.StatusOK},
			wantStatus: membership.StatusCanceled,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/billing/events"

		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(t, tt.httpTest)

			if tt.wantCode == http.StatusOK {
				var info gym.SubscriptionInfo
				unmarshal(t, rec, &info)
				assert.Equal(t, tt.wantStatus, info.Status)
			}
		})
	}
}
