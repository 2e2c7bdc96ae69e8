package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

const (
	DefaultCapacity = 20
	DefaultDuration = 60 // minutes
)

// OpenMat is what a check-in is attributed to when no scheduled class is running.
var OpenMat = Current{ClassName: "Open Mat", Instructor: "Open"}

type Class struct {
	ID          int       `json:"id"`
	GymID       int       `json:"gym_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Instructor  string    `json:"instructor"`
	Duration    int       `json:"duration"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewClass struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Capacity    int    `json:"capacity" validate:"omitempty,min=1,max=1000"`
	Instructor  string `json:"instructor" validate:"omitempty,max=100"`
	Duration    int    `json:"duration" validate:"omitempty,min=1,max=1440"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Instructor = core.CleanString(nc.Instructor)
	if nc.Capacity == 0 {
		nc.Capacity = DefaultCapacity
	}
	if nc.Duration == 0 {
		nc.Duration = DefaultDuration
	}
	return validate.Struct(nc)
}

// Schedule is a weekly slot. DayOfWeek is 0 for Monday through 6 for Sunday;
// StartTime and EndTime are "HH:MM" wall-clock times.
type Schedule struct {
	ID          int       `json:"id"`
	GymID       int       `json:"gym_id"`
	ClassName   string    `json:"class_name"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Instructor  string    `json:"instructor"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type NewSchedule struct {
	ClassName   string `json:"class_name" validate:"required,max=100"`
	DayOfWeek   *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
	Instructor  string `json:"instructor" validate:"omitempty,max=100"`
	MaxCapacity int    `json:"max_capacity" validate:"omitempty,min=1,max=1000"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.StartTime = core.CleanString(ns.StartTime)
	ns.EndTime = core.CleanString(ns.EndTime)
	ns.Instructor = core.CleanString(ns.Instructor)
	if ns.MaxCapacity == 0 {
		ns.MaxCapacity = DefaultCapacity
	}
	return validate.Struct(ns)
}

// Current is the class running at a given time.
type Current struct {
	ClassName  string `json:"class_name"`
	Instructor string `json:"instructor"`
	ScheduleID *int   `json:"schedule_id,omitempty"`
}

// Weekday converts t's weekday to the schedule numbering (Monday = 0).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ClockTime formats t as "HH:MM", the format schedules are stored and compared in.
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}
