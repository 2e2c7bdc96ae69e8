package tests

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

func Test_studentApi_create(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")

	tests := []httpTest{
		{name: "Auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "required fields", body: []byte(`{}`), token: f.ownerToken, wantCode: http.StatusBadRequest},
		{
			name: "invalid belt", token: f.ownerToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, student.NewStudent{Name: "Bia", BeltLevel: "Green"}),
		},
		{
			name: "card number taken", token: f.ownerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, student.NewStudent{Name: "Bia", CardNumber: "C100"}),
			wantData: marchallObj(t, map[string]string{"card_number": student.ErrCardNumberExists.Error()}),
		},
		{name: "generated ids", token: f.ownerToken, wantCode: http.StatusCreated, body: marchallObj(t, student.NewStudent{Name: "Bia"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/students"

		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(t, tt)

			if tt.wantCode == http.StatusCreated {
				var s student.Student
				unmarshal(t, rec, &s)
				assert.Equal(t, f.gym.ID, s.GymID)
				assert.Equal(t, "Bia", s.Name)
				assert.Equal(t, student.BeltWhite, s.BeltLevel)
				assert.Equal(t, "MBR002", s.MemberID)
				assert.Equal(t, "CARD1002", s.CardNumber)
			}
		})
	}
}

func Test_studentApi_query(t *testing.T) {
	f := setup(t)
	ana := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")
	bia := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Bia", "bia@test.cd", "C101")
	other, _ := testutil.CreateGym(t, f.gymRepo, "Alliance", "owner@alliance.test", ownerPwd)
	testutil.CreateStudent(t, f.studentRepo, other.ID, "Caio", "caio@test.cd", "C102")

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/students", token: f.ownerToken, wantCode: http.StatusOK})
	var students []student.Student
	unmarshal(t, rec, &students)
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []int{ana.ID, bia.ID}, ids)
}

func Test_studentApi_detail(t *testing.T) {
	f := setup(t)
	ana := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")
	bia := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Bia", "bia@test.cd", "C101")
	other, _ := testutil.CreateGym(t, f.gymRepo, "Alliance", "owner@alliance.test", ownerPwd)
	caio := testutil.CreateStudent(t, f.studentRepo, other.ID, "Caio", "caio@test.cd", "C102")

	path := func(s student.Student) string { return "/api/students/" + strconv.Itoa(s.ID) }
	notFound := marchallObj(t, httpErr{Error: "Student not found"})

	tests := []httpTest{
		{name: "malformed id", method: http.MethodGet, path: "/api/students/lol", wantCode: http.StatusNotFound},
		{name: "other gym", method: http.MethodGet, path: path(caio), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "retrieve", method: http.MethodGet, path: path(ana), wantCode: http.StatusOK, wantData: marchallObj(t, ana)},
		{
			name: "update: card number taken", method: http.MethodPut, path: path(ana), wantCode: http.StatusBadRequest,
			body: marchallObj(t, student.UpdateStudent{CardNumber: bia.CardNumber}),
		},
		{name: "update: promote", method: http.MethodPut, path: path(ana), wantCode: http.StatusOK, body: marchallObj(t, student.UpdateStudent{BeltLevel: student.BeltBlue})},
		{name: "delete", method: http.MethodDelete, path: path(bia), wantCode: http.StatusNoContent},
		{name: "deleted", method: http.MethodGet, path: path(bia), wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		tt.token = f.ownerToken

		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(t, tt)

			if tt.method == http.MethodPut && tt.wantCode == http.StatusOK {
				var s student.Student
				unmarshal(t, rec, &s)
				assert.Equal(t, student.BeltBlue, s.BeltLevel)
				assert.Equal(t, ana.Name, s.Name)
				assert.Equal(t, ana.CardNumber, s.CardNumber)
			}
		})
	}
}

func Test_studentApi_risk(t *testing.T) {
	f := setup(t)
	ana := testutil.CreateStudent(t, f.studentRepo, f.gym.ID, "Ana", "ana@test.cd", "C100")
	testutil.CheckIn(t, f.attRepo, ana, time.Now().Add(-20 * 24 * time.Hour))
	testutil.CheckIn(t, f.attRepo, ana, time.Now().Add(-10 * 24 * time.Hour))

	admin := testutil.CreateUser(t, f.usrRepo, f.gym.ID, "Front Desk", "desk@gb.test", "ADM0000CAFE", ownerPwd, user.RoleAdmin, true)
	rec := f.serve(t, httpTest{
		method: http.MethodGet, path: "/api/students/" + strconv.Itoa(ana.ID) + "/risk",
		token: f.token(t, admin), wantCode: http.StatusOK,
	})

	var a risk.Assessment
	unmarshal(t, rec, &a)
	assert.Equal(t, ana.ID, a.StudentID)
	assert.Equal(t, 2, a.TotalClasses)
	assert.Equal(t, 10, a.DaysAbsent)
	assert.Equal(t, risk.LevelMedium, a.Level)
}
