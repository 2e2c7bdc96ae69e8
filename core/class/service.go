package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("class not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrNameExists       = errors.New("a class with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, gymID int, name string) error
		CreateClass(ctx context.Context, c Class) (Class, error)
		// QueryClasses orders by name.
		QueryClasses(ctx context.Context, gymID int) ([]Class, error)
		DeleteClass(ctx context.Context, gymID, id int) error
		CountClasses(ctx context.Context, gymID int) (int, error)

		CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		// QuerySchedules orders by day of week, then start time.
		QuerySchedules(ctx context.Context, gymID int) ([]Schedule, error)
		DeleteSchedule(ctx context.Context, gymID, id int) error
		CountSchedulesOn(ctx context.Context, gymID, dayOfWeek int) (int, error)
		// ScheduleAt returns the earliest starting schedule of `dayOfWeek` with
		// start <= hhmm <= end, or ErrScheduleNotFound.
		ScheduleAt(ctx context.Context, gymID, dayOfWeek int, hhmm string) (Schedule, error)
	}

	Service interface {
		CreateClass(ctx context.Context, gymID int, nc NewClass) (Class, error)
		QueryClasses(ctx context.Context, gymID int) ([]Class, error)
		DeleteClass(ctx context.Context, gymID, id int) error
		CountClasses(ctx context.Context, gymID int) (int, error)

		CreateSchedule(ctx context.Context, gymID int, ns NewSchedule) (Schedule, error)
		QuerySchedules(ctx context.Context, gymID int) ([]Schedule, error)
		DeleteSchedule(ctx context.Context, gymID, id int) error
		// ClassesOn counts the schedules of the weekday of `t`.
		ClassesOn(ctx context.Context, gymID int, t time.Time) (int, error)
		// CurrentClass returns the class running at `t` (gym local time), or OpenMat.
		CurrentClass(ctx context.Context, gymID int, t time.Time) (Current, error)
	}

	service struct {
		repo Repository
	}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateClass(ctx context.Context, gymID int, nc NewClass) (Class, error) {
	if err := svc.repo.CheckNameUniqueness(ctx, gymID, nc.Name); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return Class{}, core.NewFieldError("name", err)
		}
		return Class{}, errors.Wrap(err, "checking name uniqueness")
	}
	c := Class{
		GymID:       gymID,
		Name:        nc.Name,
		Description: nc.Description,
		Capacity:    nc.Capacity,
		Instructor:  nc.Instructor,
		Duration:    nc.Duration,
		CreatedAt:   NowFunc().UTC(),
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	return svc.repo.CreateClass(ctx, c)
}

func (svc *service) QueryClasses(ctx context.Context, gymID int) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, gymID)
}

func (svc *service) DeleteClass(ctx context.Context, gymID, id int) error {
	return svc.repo.DeleteClass(ctx, gymID, id)
}

func (svc *service) CountClasses(ctx context.Context, gymID int) (int, error) {
	return svc.repo.CountClasses(ctx, gymID)
}

func (svc *service) CreateSchedule(ctx context.Context, gymID int, ns NewSchedule) (Schedule, error) {
	if ns.DayOfWeek == nil {
		return Schedule{}, core.NewValidationError(nil, core.FieldError{Field: "day_of_week", Error: "this field is required"})
	}
	s := Schedule{
		GymID:       gymID,
		ClassName:   ns.ClassName,
		DayOfWeek:   *ns.DayOfWeek,
		StartTime:   ns.StartTime,
		EndTime:     ns.EndTime,
		Instructor:  ns.Instructor,
		MaxCapacity: ns.MaxCapacity,
		CreatedAt:   NowFunc().UTC(),
	}
	if s.MaxCapacity == 0 {
		s.MaxCapacity = DefaultCapacity
	}
	return svc.repo.CreateSchedule(ctx, s)
}

func (svc *service) QuerySchedules(ctx context.Context, gymID int) ([]Schedule, error) {
	return svc.repo.QuerySchedules(ctx, gymID)
}

func (svc *service) DeleteSchedule(ctx context.Context, gymID, id int) error {
	return svc.repo.DeleteSchedule(ctx, gymID, id)
}

func (svc *service) ClassesOn(ctx context.Context, gymID int, t time.Time) (int, error) {
	return svc.repo.CountSchedulesOn(ctx, gymID, Weekday(t))
}

func (svc *service) CurrentClass(ctx context.Context, gymID int, t time.Time) (Current, error) {
	s, err := svc.repo.ScheduleAt(ctx, gymID, Weekday(t), ClockTime(t))
	if err != nil {
		if errors.Cause(err) == ErrScheduleNotFound {
			return OpenMat, nil
		}
		return Current{}, errors.Wrap(err, "finding current schedule")
	}
	id := s.ID
	return Current{ClassName: s.ClassName, Instructor: s.Instructor, ScheduleID: &id}, nil
}
