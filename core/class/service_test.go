package class_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	inmemdb "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/inmem"
)

func intPtr(i int) *int { return &i }

func TestWeekday(t *testing.T) {
	monday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, class.Weekday(monday.AddDate(0, 0, i)))
	}
}

func TestService_CreateClass(t *testing.T) {
	ctx := context.Background()
	svc := class.NewService(inmemdb.NewClassRepository(inmemdb.Open()))

	c, err := svc.CreateClass(ctx, 1, class.NewClass{Name: "Fundamentals"})
	require.NoError(t, err)
	assert.Equal(t, class.DefaultCapacity, c.Capacity)
	assert.Equal(t, class.DefaultDuration, c.Duration)

	_, err = svc.CreateClass(ctx, 1, class.NewClass{Name: "Fundamentals"})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Fields[0].Field)

	// names are unique per gym only
	_, err = svc.CreateClass(ctx, 2, class.NewClass{Name: "Fundamentals"})
	require.NoError(t, err)

	_, err = svc.CreateClass(ctx, 1, class.NewClass{Name: "Advanced", Capacity: 12, Duration: 90})
	require.NoError(t, err)
	classes, err := svc.QueryClasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Advanced", classes[0].Name)
	assert.Equal(t, 12, classes[0].Capacity)

	require.NoError(t, svc.DeleteClass(ctx, 1, c.ID))
	assert.Equal(t, class.ErrNotFound, errors.Cause(svc.DeleteClass(ctx, 1, c.ID)))
	n, err := svc.CountClasses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_CurrentClass(t *testing.T) {
	ctx := context.Background()
	svc := class.NewService(inmemdb.NewClassRepository(inmemdb.Open()))

	schedules := []class.NewSchedule{
		{ClassName: "Evening Gi", DayOfWeek: intPtr(0), StartTime: "18:00", EndTime: "19:30", Instructor: "Rafael"},
		{ClassName: "No-Gi", DayOfWeek: intPtr(0), StartTime: "19:00", EndTime: "20:00", Instructor: "Ana"},
		{ClassName: "Morning", DayOfWeek: intPtr(1), StartTime: "07:00", EndTime: "08:00", Instructor: "Leo"},
	}
	var evening class.Schedule
	for i, ns := range schedules {
		s, err := svc.CreateSchedule(ctx, 1, ns)
		require.NoError(t, err)
		if i == 0 {
			evening = s
		}
	}

	monday := func(hh, mm int) time.Time { return time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC) }
	tests := []struct {
		name           string
		at             time.Time
		wantClass      string
		wantInstructor string
	}{
		{name: "before any class", at: monday(17, 59), wantClass: "Open Mat", wantInstructor: "Open"},
		{name: "at start", at: monday(18, 0), wantClass: "Evening Gi", wantInstructor: "Rafael"},
		{name: "overlap: earliest start wins", at: monday(19, 15), wantClass: "Evening Gi", wantInstructor: "Rafael"},
		{name: "at end", at: monday(19, 30), wantClass: "Evening Gi", wantInstructor: "Rafael"},
		{name: "after the first", at: monday(19, 45), wantClass: "No-Gi", wantInstructor: "Ana"},
		{name: "other day", at: monday(7, 30).AddDate(0, 0, 1), wantClass: "Morning", wantInstructor: "Leo"},
		{name: "same time other day", at: monday(18, 30).AddDate(0, 0, 7+2), wantClass: "Open Mat", wantInstructor: "Open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, err := svc.CurrentClass(ctx, 1, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClass, cur.ClassName)
			assert.Equal(t, tt.wantInstructor, cur.Instructor)
		})
	}

	cur, err := svc.CurrentClass(ctx, 1, monday(18, 5))
	require.NoError(t, err)
	require.NotNil(t, cur.ScheduleID)
	assert.Equal(t, evening.ID, *cur.ScheduleID)

	// other gyms have an open mat
	cur, err = svc.CurrentClass(ctx, 2, monday(18, 5))
	require.NoError(t, err)
	assert.Equal(t, class.OpenMat, cur)

	n, err := svc.ClassesOn(ctx, 1, monday(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewSchedule_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	class.InitValidators(validate, translator)

	tests := []struct {
		name    string
		ns      class.NewSchedule
		wantErr bool
	}{
		{name: "valid", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(0), StartTime: "18:00", EndTime: "19:00"}},
		{name: "sunday", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(6), StartTime: "09:00", EndTime: "10:00"}},
		{name: "no day", ns: class.NewSchedule{ClassName: "Gi", StartTime: "18:00", EndTime: "19:00"}, wantErr: true},
		{name: "day out of range", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(7), StartTime: "18:00", EndTime: "19:00"}, wantErr: true},
		{name: "bad time", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(0), StartTime: "6pm", EndTime: "19:00"}, wantErr: true},
		{name: "hour out of range", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(0), StartTime: "18:00", EndTime: "24:00"}, wantErr: true},
		{name: "ends before start", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(0), StartTime: "19:00", EndTime: "18:00"}, wantErr: true},
		{name: "empty slot", ns: class.NewSchedule{ClassName: "Gi", DayOfWeek: intPtr(0), StartTime: "19:00", EndTime: "19:00"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, class.DefaultCapacity, tt.ns.MaxCapacity)
		})
	}
}
