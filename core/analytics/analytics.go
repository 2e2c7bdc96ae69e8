// Package analytics computes the dashboard figures of a gym.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

var (
	NowFunc = time.Now // mockable

	// RevenuePerStudent is the estimated monthly fee of one student.
	RevenuePerStudent = decimal.NewFromInt(120)

	recentWindow = 7 * 24 * time.Hour
)

type BeltCount struct {
	BeltLevel string `json:"belt_level"`
	Count     int    `json:"count"`
}

type Dashboard struct {
	BeltDistribution        []BeltCount     `json:"belt_distribution"`
	TotalStudents           int             `json:"total_students"`
	ClassesToday            int             `json:"classes_today"`
	RecentAttendance        int             `json:"recent_attendance"`
	TotalCheckins           int             `json:"total_checkins"`
	CardCheckins            int             `json:"card_checkins"`
	CardUsageRate           int             `json:"card_usage_rate"`
	MonthlyRevenuePotential decimal.Decimal `json:"monthly_revenue_potential"`
	SubscriptionPlan        membership.Plan `json:"subscription_plan"`
}

// BeltDistribution counts students per belt, ordered White, Blue, Purple, Brown, Black,
// then unknown belts by name.
func BeltDistribution(students []student.Student) []BeltCount {
	counts := make(map[string]int)
	for _, s := range students {
		counts[s.BeltLevel]++
	}
	dist := make([]BeltCount, 0, len(counts))
	for belt, n := range counts {
		dist = append(dist, BeltCount{BeltLevel: belt, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		ri, rj := student.BeltRank(dist[i].BeltLevel), student.BeltRank(dist[j].BeltLevel)
		if ri != rj {
			return ri < rj
		}
		return dist[i].BeltLevel < dist[j].BeltLevel
	})
	return dist
}

// CardUsageRate is the integer percentage (truncated) of check-ins made by card.
func CardUsageRate(cardCheckins, totalCheckins int) int {
	if totalCheckins <= 0 {
		return 0
	}
	return cardCheckins * 100 / totalCheckins
}

type Service struct {
	students   student.Service
	classes    class.Service
	attendance attendance.Service
	loc        *time.Location
}

func NewService(students student.Service, classes class.Service, att attendance.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{students: students, classes: classes, attendance: att, loc: loc}
}

func (svc *Service) Dashboard(ctx context.Context, gymID int, plan membership.Plan) (Dashboard, error) {
	now := NowFunc()

	students, err := svc.students.Query(ctx, gymID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying students")
	}
	classesToday, err := svc.classes.ClassesOn(ctx, gymID, now.In(svc.loc))
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting classes today")
	}
	recent, err := svc.attendance.CountSince(ctx, gymID, now.Add(-recentWindow))
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting recent check-ins")
	}
	total, err := svc.attendance.Count(ctx, gymID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting check-ins")
	}
	byCard, err := svc.attendance.CountByCard(ctx, gymID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting card check-ins")
	}

	return Dashboard{
		BeltDistribution:        BeltDistribution(students),
		TotalStudents:           len(students),
		ClassesToday:            classesToday,
		RecentAttendance:        recent,
		TotalCheckins:           total,
		CardCheckins:            byCard,
		CardUsageRate:           CardUsageRate(byCard, total),
		MonthlyRevenuePotential: RevenuePerStudent.Mul(decimal.NewFromInt(int64(len(students)))),
		SubscriptionPlan:        plan,
	}, nil
}
