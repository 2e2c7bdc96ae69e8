package sqlxrepos

import (
	"context"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
)

const (
	classColumns    = `id, gym_id, name, description, capacity, instructor, duration, created_at`
	scheduleColumns = `id, gym_id, class_name, day_of_week, start_time, end_time, instructor, max_capacity, created_at`
)

var classConstraints = map[string]error{
	"classes_name_key": class.ErrNameExists,
}

type classRow struct {
	ID          int       `db:"id"`
	GymID       int       `db:"gym_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Capacity    int       `db:"capacity"`
	Instructor  string    `db:"instructor"`
	Duration    int       `db:"duration"`
	CreatedAt   time.Time `db:"created_at"`
}

type scheduleRow struct {
	ID          int       `db:"id"`
	GymID       int       `db:"gym_id"`
	ClassName   string    `db:"class_name"`
	DayOfWeek   int       `db:"day_of_week"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	Instructor  string    `db:"instructor"`
	MaxCapacity int       `db:"max_capacity"`
	CreatedAt   time.Time `db:"created_at"`
}

func classRows(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		c := class.Class(r)
		c.CreatedAt = r.CreatedAt.UTC()
		classes = append(classes, c)
	}
	return classes
}

func scheduleRows(rows []scheduleRow) []class.Schedule {
	schedules := make([]class.Schedule, 0, len(rows))
	for _, r := range rows {
		s := class.Schedule(r)
		s.CreatedAt = r.CreatedAt.UTC()
		schedules = append(schedules, s)
	}
	return schedules
}

type classRepository struct {
	exec core.DBExecutor
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(exec core.DBExecutor) class.Repository {
	return &classRepository{exec: exec}
}

func (repo *classRepository) CheckNameUniqueness(ctx context.Context, gymID int, name string) error {
	var exists bool
	err := repo.exec.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE gym_id = $1 AND name = $2)`, gymID, name)
	if err != nil {
		return wrapErr(err, "checking class name uniqueness")
	}
	if exists {
		return class.ErrNameExists
	}
	return nil
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.CreatedAt = c.CreatedAt.UTC()
	id, err := insert(ctx, repo.exec, `
		INSERT INTO classes (gym_id, name, description, capacity, instructor, duration, created_at)
		VALUES (:gym_id, :name, :description, :capacity, :instructor, :duration, :created_at)
		RETURNING id`, classRow(c))
	if err != nil {
		if e := constraintErr(err, classConstraints); e != nil {
			return class.Class{}, e
		}
		return class.Class{}, wrapErr(err, "inserting class")
	}
	c.ID = id
	return c, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, gymID int) ([]class.Class, error) {
	var rows []classRow
	err := repo.exec.SelectContext(ctx, &rows,
		`SELECT `+classColumns+` FROM classes WHERE gym_id = $1 ORDER BY name`, gymID)
	if err != nil {
		return nil, wrapErr(err, "querying classes")
	}
	return classRows(rows), nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, gymID, id int) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM classes WHERE gym_id = $1 AND id = $2`, gymID, id)
	if err != nil {
		return wrapErr(err, "deleting class")
	}
	return mustAffect(res, class.ErrNotFound)
}

func (repo *classRepository) CountClasses(ctx context.Context, gymID int) (int, error) {
	var n int
	if err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM classes WHERE gym_id = $1`, gymID); err != nil {
		return 0, wrapErr(err, "counting classes")
	}
	return n, nil
}

func (repo *classRepository) CreateSchedule(ctx context.Context, s class.Schedule) (class.Schedule, error) {
	s.CreatedAt = s.CreatedAt.UTC()
	id, err := insert(ctx, repo.exec, `
		INSERT INTO schedules (gym_id, class_name, day_of_week, start_time, end_time, instructor, max_capacity, created_at)
		VALUES (:gym_id, :class_name, :day_of_week, :start_time, :end_time, :instructor, :max_capacity, :created_at)
		RETURNING id`, scheduleRow(s))
	if err != nil {
		return class.Schedule{}, wrapErr(err, "inserting schedule")
	}
	s.ID = id
	return s, nil
}

func (repo *classRepository) QuerySchedules(ctx context.Context, gymID int) ([]class.Schedule, error) {
	var rows []scheduleRow
	err := repo.exec.SelectContext(ctx, &rows,
		`SELECT `+scheduleColumns+` FROM schedules WHERE gym_id = $1 ORDER BY day_of_week, start_time, id`, gymID)
	if err != nil {
		return nil, wrapErr(err, "querying schedules")
	}
	return scheduleRows(rows), nil
}

func (repo *classRepository) DeleteSchedule(ctx context.Context, gymID, id int) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM schedules WHERE gym_id = $1 AND id = $2`, gymID, id)
	if err != nil {
		return wrapErr(err, "deleting schedule")
	}
	return mustAffect(res, class.ErrScheduleNotFound)
}

func (repo *classRepository) CountSchedulesOn(ctx context.Context, gymID, dayOfWeek int) (int, error) {
	var n int
	err := repo.exec.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM schedules WHERE gym_id = $1 AND day_of_week = $2`, gymID, dayOfWeek)
	if err != nil {
		return 0, wrapErr(err, "counting schedules")
	}
	return n, nil
}

func (repo *classRepository) ScheduleAt(ctx context.Context, gymID, dayOfWeek int, hhmm string) (class.Schedule, error) {
	var row scheduleRow
	err := repo.exec.GetContext(ctx, &row, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE gym_id = $1 AND day_of_week = $2 AND start_time <= $3 AND end_time >= $3
		ORDER BY start_time, id LIMIT 1`, gymID, dayOfWeek, hhmm)
	if err != nil {
		return class.Schedule{}, trapNoRowsErr(err, class.ErrScheduleNotFound, "finding schedule")
	}
	return scheduleRows([]scheduleRow{row})[0], nil
}
