package tests

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
)

func Test_classApi_classes(t *testing.T) {
	f := setup(t)

	var created class.Class
	t.Run("create with defaults", func(t *testing.T) {
		rec := f.serve(t, httpTest{
			method: http.MethodPost, path: "/api/classes", token: f.ownerToken,
			body: marchallObj(t, class.NewClass{Name: "Fundamentals", Instructor: "Prof. Lima"}), wantCode: http.StatusCreated,
		})
		unmarshal(t, rec, &created)
		assert.Equal(t, f.gym.ID, created.GymID)
		assert.Equal(t, class.DefaultCapacity, created.Capacity)
		assert.Equal(t, class.DefaultDuration, created.Duration)
	})

	t.Run("duplicate name", func(t *testing.T) {
		f.serve(t, httpTest{
			method: http.MethodPost, path: "/api/classes", token: f.ownerToken,
			body: marchallObj(t, class.NewClass{Name: "Fundamentals"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": class.ErrNameExists.Error()}),
		})
	})

	t.Run("list", func(t *testing.T) {
		f.serve(t, httpTest{
			method: http.MethodGet, path: "/api/classes", token: f.ownerToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []class.Class{created}),
		})
	})

	path := "/api/classes/" + strconv.Itoa(created.ID)
	t.Run("delete", func(t *testing.T) {
		f.serve(t, httpTest{method: http.MethodDelete, path: path, token: f.ownerToken, wantCode: http.StatusOK})
		f.serve(t, httpTest{
			method: http.MethodDelete, path: path, token: f.ownerToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Class not found"}),
		})
	})
}

func Test_classApi_schedules(t *testing.T) {
	f := setup(t)
	day := func(d int) *int { return &d }

	tests := []httpTest{
		{name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{
			name: "invalid day", wantCode: http.StatusBadRequest,
			body: marchallObj(t, class.NewSchedule{ClassName: "Fundamentals", DayOfWeek: day(7), StartTime: "18:00", EndTime: "19:00"}),
		},
		{
			name: "invalid time", wantCode: http.StatusBadRequest,
			body: marchallObj(t, class.NewSchedule{ClassName: "Fundamentals", DayOfWeek: day(0), StartTime: "6pm", EndTime: "19:00"}),
		},
		{
			name: "ends before start", wantCode: http.StatusBadRequest,
			body: marchallObj(t, class.NewSchedule{ClassName: "Fundamentals", DayOfWeek: day(0), StartTime: "19:00", EndTime: "18:00"}),
		},
		{
			name: "monday evening", wantCode: http.StatusCreated,
			body: marchallObj(t, class.NewSchedule{ClassName: "Fundamentals", DayOfWeek: day(0), StartTime: "18:00", EndTime: "19:00"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/schedules"
		tt.token = f.ownerToken

		t.Run(tt.name, func(t *testing.T) {
			f.serve(t, tt)
		})
	}

	rec := f.serve(t, httpTest{method: http.MethodGet, path: "/api/schedules", token: f.ownerToken, wantCode: http.StatusOK})
	var schedules []class.Schedule
	unmarshal(t, rec, &schedules)
	if assert.Len(t, schedules, 1) {
		s := schedules[0]
		assert.Equal(t, 0, s.DayOfWeek)
		assert.Equal(t, "18:00", s.StartTime)
		assert.Equal(t, class.DefaultCapacity, s.MaxCapacity)

		path := "/api/schedules/" + strconv.Itoa(s.ID)
		f.serve(t, httpTest{method: http.MethodDelete, path: path, token: f.ownerToken, wantCode: http.StatusOK})
		f.serve(t, httpTest{
			method: http.MethodDelete, path: path, token: f.ownerToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Schedule not found"}),
		})
	}
}

func Test_classApi_currentClass(t *testing.T) {
	f := setup(t)

	f.serve(t, httpTest{
		method: http.MethodGet, path: "/api/current-class", token: f.ownerToken,
		wantCode: http.StatusOK, wantData: marchallObj(t, class.OpenMat),
	})
}
