package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		Create(ctx context.Context, l Log) (Log, error)
		// QueryRecent returns the latest `limit` logs, newest first.
		QueryRecent(ctx context.Context, gymID, limit int) ([]Log, error)
		// Snapshot reads the students of the gym and, per student, the latest check-in
		// and check-in count, all from the same point in time.
		Snapshot(ctx context.Context, gymID int) (Snapshot, error)
		// Summary returns the attendance summary of one student.
		Summary(ctx context.Context, gymID, studentID int) (risk.Summary, error)
		Count(ctx context.Context, gymID int) (int, error)
		CountSince(ctx context.Context, gymID int, since time.Time) (int, error)
		CountByCard(ctx context.Context, gymID int) (int, error)
	}

	Service interface {
		CheckIn(ctx context.Context, gymID int, ci CheckIn) (CheckInResult, error)
		QueryRecent(ctx context.Context, gymID int) ([]Log, error)
		// RiskReport lists the students at risk of dropping out, longest absent first.
		RiskReport(ctx context.Context, gymID int) ([]AtRiskStudent, error)
		StudentRisk(ctx context.Context, gymID, studentID int) (risk.Assessment, error)
		Count(ctx context.Context, gymID int) (int, error)
		CountSince(ctx context.Context, gymID int, since time.Time) (int, error)
		CountByCard(ctx context.Context, gymID int) (int, error)
	}

	service struct {
		repo       Repository
		students   student.Service
		classes    class.Service
		thresholds risk.Thresholds
		loc        *time.Location
	}
)

// NewService returns the attendance service. Schedules are matched against the wall
// clock of `loc`.
func NewService(
	repo Repository,
	students student.Service,
	classes class.Service,
	thresholds risk.Thresholds,
	loc *time.Location,
) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{repo: repo, students: students, classes: classes, thresholds: thresholds, loc: loc}
}

func (svc *service) CheckIn(ctx context.Context, gymID int, ci CheckIn) (CheckInResult, error) {
	now := NowFunc()
	l := Log{GymID: gymID, CheckInTime: now.UTC()}
	method := MethodName

	if ci.CardNumber != "" {
		method = MethodCard
		s, err := svc.students.GetByCardNumber(ctx, gymID, ci.CardNumber)
		if err != nil {
			return CheckInResult{}, errors.Wrap(err, "finding student by card number")
		}
		l.StudentName, l.StudentID, l.MemberID, l.CardNumber = s.Name, &s.ID, s.MemberID, s.CardNumber
	} else {
		l.StudentName = ci.StudentName
		s, err := svc.students.GetByName(ctx, gymID, ci.StudentName)
		switch errors.Cause(err) {
		case nil:
			l.StudentID, l.MemberID = &s.ID, s.MemberID
		case student.ErrNotFound:
			// walk-in
		default:
			return CheckInResult{}, errors.Wrap(err, "finding student by name")
		}
	}

	current, err := svc.classes.CurrentClass(ctx, gymID, now.In(svc.loc))
	if err != nil {
		return CheckInResult{}, errors.Wrap(err, "getting current class")
	}
	l.ClassName, l.ScheduleID = current.ClassName, current.ScheduleID

	l, err = svc.repo.Create(ctx, l)
	if err != nil {
		return CheckInResult{}, errors.Wrap(err, "creating attendance log")
	}
	return CheckInResult{
		Message:     "Successfully checked in " + l.StudentName,
		StudentName: l.StudentName,
		MemberID:    l.MemberID,
		CardNumber:  l.CardNumber,
		ClassName:   current.ClassName,
		Instructor:  current.Instructor,
		Method:      method,
		CheckInTime: l.CheckInTime,
	}, nil
}

func (svc *service) QueryRecent(ctx context.Context, gymID int) ([]Log, error) {
	return svc.repo.QueryRecent(ctx, gymID, RecentLimit)
}

func (svc *service) RiskReport(ctx context.Context, gymID int) ([]AtRiskStudent, error) {
	snap, err := svc.repo.Snapshot(ctx, gymID)
	if err != nil {
		return nil, errors.Wrap(err, "reading attendance snapshot")
	}

	members := make([]risk.Member, 0, len(snap.Students))
	byID := make(map[int]student.Student, len(snap.Students))
	for _, s := range snap.Students {
		members = append(members, risk.Member{ID: s.ID, Name: s.Name})
		byID[s.ID] = s
	}

	assessments := svc.thresholds.BuildAtRiskReport(NowFunc(), members, snap.Index)
	report := make([]AtRiskStudent, 0, len(assessments))
	for _, a := range assessments {
		s := byID[a.StudentID]
		report = append(report, AtRiskStudent{
			Assessment: a,
			Email:      s.Email,
			Phone:      s.Phone,
			BeltLevel:  s.BeltLevel,
			MemberID:   s.MemberID,
			CardNumber: s.CardNumber,
		})
	}
	return report, nil
}

func (svc *service) StudentRisk(ctx context.Context, gymID, studentID int) (risk.Assessment, error) {
	s, err := svc.students.GetByID(ctx, gymID, studentID)
	if err != nil {
		return risk.Assessment{}, errors.Wrap(err, "finding student by ID")
	}
	summary, err := svc.repo.Summary(ctx, gymID, studentID)
	if err != nil {
		return risk.Assessment{}, errors.Wrap(err, "reading attendance summary")
	}
	idx := risk.Index{}
	if summary.Visits > 0 {
		idx[s.ID] = summary
	}
	return svc.thresholds.Assess(NowFunc(), risk.Member{ID: s.ID, Name: s.Name}, idx), nil
}

func (svc *service) Count(ctx context.Context, gymID int) (int, error) {
	return svc.repo.Count(ctx, gymID)
}

func (svc *service) CountSince(ctx context.Context, gymID int, since time.Time) (int, error) {
	return svc.repo.CountSince(ctx, gymID, since)
}

func (svc *service) CountByCard(ctx context.Context, gymID int) (int, error) {
	return svc.repo.CountByCard(ctx, gymID)
}
