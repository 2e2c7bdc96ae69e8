package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

func Test_attendanceApi_checkIn(t *testing.T) {
	f := setup(t)
	ana := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")

	tests := []struct {
		httpTest
		wantMethod string
		wantMember string
	}{
		{httpTest: httpTest{name: "Auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}},
		{httpTest: httpTest{name: "required fields", body: []byte(`{}`), token: f.ownerToken, wantCode: http.StatusBadRequest}},
		{httpTest: httpTest{
			name: "unknown card", body: marchallObj(t, attendance.CheckIn{CardNumber: "C999"}), token: f.ownerToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found"}),
		}},
		{
			httpTest:   httpTest{name: "card", body: marchallObj(t, attendance.CheckIn{CardNumber: "C100"}), token: f.ownerToken, wantCode: http.StatusCreated},
			wantMethod: attendance.MethodCard, wantMember: ana.MemberID,
		},
		{
			httpTest:   httpTest{name: "name", body: marchallObj(t, attendance.CheckIn{StudentName: "Ana"}), token: f.ownerToken, wantCode: http.StatusCreated},
			wantMethod: attendance.MethodName, wantMember: ana.MemberID,
		},
		{
			httpTest:   httpTest{name: "walk-in", body: marchallObj(t, attendance.CheckIn{StudentName: "Visitor"}), token: f.ownerToken, wantCode: http.StatusCreated},
			wantMethod: attendance.MethodName,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/checkin"

		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(t, tt.httpTest)

			if tt.wantCode == http.StatusCreated {
				var res attendance.CheckInResult
				unmarshal(t, rec, &res)
				assert.Equal(t, tt.wantMethod, res.Method)
				assert.Equal(t, tt.wantMember, res.MemberID)
				assert.Equal(t, "Open Mat", res.ClassName)
			}
		})
	}

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/attendance", token: f.ownerToken, wantCode: http.StatusOK})
	var logs []attendance.Log
	unmarshal(t, rec, &logs)
	if assert.Len(t, logs, 3) {
		assert.Equal(t, "Visitor", logs[0].StudentName) // newest first
		assert.Nil(t, logs[0].StudentID)
	}
}

func Test_attendanceApi_riskAnalysis(t *testing.T) {
	f := setup(t)
	now := time.Now()
	day := 24 * time.Hour

	diego := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Diego", "diego@test.cd", "C100")
	alice := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Alice", "alice@test.cd", "C101")
	carla := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Carla", "carla@test.cd", "C102")
	testutil.CheckIn(t, f.attRepo, alice, now.Add(-30*day))
	testutil.CheckIn(t, f.attRepo, alice, now.Add(-20*day))
	testutil.CheckIn(t, f.attRepo, carla, now.Add(-2*day))

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/risk-analysis", token: f.ownerToken, wantCode: http.StatusOK})
	var report []attendance.AtRiskStudent
	unmarshal(t, rec, &report)
	if assert.Len(t, report, 2) {
		assert.Equal(t, diego.ID, report[0].StudentID)
		assert.Equal(t, risk.NeverAttended, report[0].DaysAbsent)
		assert.Nil(t, report[0].LastAttendance)
		assert.Equal(t, alice.ID, report[1].StudentID)
		assert.Equal(t, 20, report[1].DaysAbsent)
		assert.Equal(t, 2, report[1].TotalClasses)
		assert.Equal(t, risk.LevelHigh, report[1].Level)
		assert.Equal(t, alice.Email, report[1].Email)
	}

	// empty gym: an empty list, not null
	_, otherOwner := testutil.CreateGym(t, f.gymRepo, "Alliance", "owner@alliance.test", ownerPwd)
	f.serve(t, httpTest{
		method: http.MethodGet, path: "/api/risk-analysis", token: f.token(t, otherOwner),
		wantCode: http.StatusOK, wantData: []byte(`[]`),
	})
}

func Test_attendanceApi_analytics(t *testing.T) {
	f := setup(t)
	ana := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")
	testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Bia", "bia@test.cd", "C101")
	testutil.CheckIn(t, f.attRepo, ana, time.Now().Add(-time.Hour))

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/analytics", token: f.ownerToken, wantCode: http.StatusOK})
	var d analytics.Dashboard
	unmarshal(t, rec, &d)
	assert.Equal(t, 2, d.TotalStudents)
	assert.Equal(t, []analytics.BeltCount{{BeltLevel: "White", Count: 2}}, d.BeltDistribution)
	assert.Equal(t, 1, d.RecentAttendance)
	assert.Equal(t, 1, d.TotalCheckins)
	assert.Equal(t, 1, d.CardCheckins)
	assert.Equal(t, 100, d.CardUsageRate)
	assert.Equal(t, "240", d.MonthlyRevenuePotential.String())
	assert.Equal(t, membership.PlanProfessional, d.SubscriptionPlan)
}
