package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/analytics"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	inmemdb "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/inmem"
	testutil "github.com/Jhorne678-blue/BJJ-PRO-GYM/tests"
)

func TestBeltDistribution(t *testing.T) {
	students := []student.Student{
		{BeltLevel: student.BeltBlack},
		{BeltLevel: "Coral"},
		{BeltLevel: student.BeltWhite},
		{BeltLevel: student.BeltBlue},
		{BeltLevel: student.BeltWhite},
		{BeltLevel: "Grey"},
	}
	assert.Equal(t, []analytics.BeltCount{
		{BeltLevel: student.BeltWhite, Count: 2},
		{BeltLevel: student.BeltBlue, Count: 1},
		{BeltLevel: student.BeltBlack, Count: 1},
		{BeltLevel: "Coral", Count: 1},
		{BeltLevel: "Grey", Count: 1},
	}, analytics.BeltDistribution(students))

	assert.Empty(t, analytics.BeltDistribution(nil))
}

func TestCardUsageRate(t *testing.T) {
	tests := []struct {
		card, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 66},
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, analytics.CardUsageRate(tt.card, tt.total), "%d/%d", tt.card, tt.total)
	}
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) // friday
	analytics.NowFunc = func() time.Time { return now }
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() {
		analytics.NowFunc = time.Now
		attendance.NowFunc = time.Now
	})

	db := inmemdb.Open()
	studentRepo := inmemdb.NewStudentRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)
	studentSvc := student.NewService(studentRepo)
	classSvc := class.NewService(inmemdb.NewClassRepository(db))
	attSvc := attendance.NewService(attRepo, studentSvc, classSvc, risk.DefaultThresholds, time.UTC)
	svc := analytics.NewService(studentSvc, classSvc, attSvc, time.UTC)

	alice := testutil.CreateStudent(t, studentRepo, 1, "Alice", "", "C1")
	testutil.CreateStudent(t, studentRepo, 1, "Bruno", "", "C2")
	_, err := studentRepo.Create(ctx, student.Student{
		GymID: 1, Name: "Carla", BeltLevel: student.BeltPurple, MemberID: "M3", CardNumber: "C3", CreatedAt: now,
	})
	require.NoError(t, err)

	friday, monday := 4, 0
	for _, ns := range []class.NewSchedule{
		{ClassName: "Gi", DayOfWeek: &friday, StartTime: "07:00", EndTime: "08:00"},
		{ClassName: "No-Gi", DayOfWeek: &friday, StartTime: "19:00", EndTime: "20:00"},
		{ClassName: "Gi", DayOfWeek: &monday, StartTime: "19:00", EndTime: "20:00"},
	} {
		_, err := classSvc.CreateSchedule(ctx, 1, ns)
		require.NoError(t, err)
	}

	testutil.CheckIn(t, attRepo, alice, now.AddDate(0, 0, -10))
	testutil.CheckIn(t, attRepo, alice, now.AddDate(0, 0, -2))
	_, err = attSvc.CheckIn(ctx, 1, attendance.CheckIn{StudentName: "Bruno"})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx, 1, membership.PlanProfessional)
	require.NoError(t, err)
	assert.Equal(t, []analytics.BeltCount{
		{BeltLevel: student.BeltWhite, Count: 2},
		{BeltLevel: student.BeltPurple, Count: 1},
	}, d.BeltDistribution)
	assert.Equal(t, 3, d.TotalStudents)
	assert.Equal(t, 2, d.ClassesToday)
	assert.Equal(t, 2, d.RecentAttendance)
	assert.Equal(t, 3, d.TotalCheckins)
	assert.Equal(t, 2, d.CardCheckins)
	assert.Equal(t, 66, d.CardUsageRate)
	assert.True(t, decimal.NewFromInt(360).Equal(d.MonthlyRevenuePotential))
	assert.Equal(t, membership.PlanProfessional, d.SubscriptionPlan)

	// empty gym
	d, err = svc.Dashboard(ctx, 2, membership.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, 0, d.TotalStudents)
	assert.Equal(t, 0, d.CardUsageRate)
	assert.True(t, decimal.Zero.Equal(d.MonthlyRevenuePotential))
	assert.Empty(t, d.BeltDistribution)
}
