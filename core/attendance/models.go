package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

const (
	MethodCard = "card"
	MethodName = "name"

	// RecentLimit caps the attendance list.
	RecentLimit = 500
)

// Log is one check-in. Logs are append-only. StudentID is nil for walk-ins, and for
// check-ins of students deleted since.
type Log struct {
	ID          int       `json:"id"`
	GymID       int       `json:"gym_id"`
	StudentName string    `json:"student_name"`
	StudentID   *int      `json:"student_id"`
	MemberID    string    `json:"member_id"`
	CardNumber  string    `json:"card_number"`
	ClassName   string    `json:"class_name"`
	ScheduleID  *int      `json:"schedule_id"`
	CheckInTime time.Time `json:"check_in_time"` // UTC
	Notes       string    `json:"notes"`
}

func (l Log) Record() risk.Record {
	return risk.Record{StudentID: l.StudentID, CheckIn: l.CheckInTime, ClassName: l.ClassName}
}

// CheckIn identifies who is checking in: by card (preferred) or by name.
type CheckIn struct {
	StudentName string `json:"student_name" validate:"required_without=CardNumber,max=200"`
	CardNumber  string `json:"card_number" validate:"required_without=StudentName,max=50"`
}

func (ci *CheckIn) Validate(validate *validator.Validate) error {
	ci.StudentName = core.CleanString(ci.StudentName)
	ci.CardNumber = core.CleanString(ci.CardNumber)
	return validate.Struct(ci)
}

type CheckInResult struct {
	Message     string    `json:"message"`
	StudentName string    `json:"student_name"`
	MemberID    string    `json:"member_id"`
	CardNumber  string    `json:"card_number"`
	ClassName   string    `json:"class_name"`
	Instructor  string    `json:"instructor"`
	Method      string    `json:"method"`
	CheckInTime time.Time `json:"check_in_time"`
}

// AtRiskStudent is a risk assessment with the contact details needed to reach out.
type AtRiskStudent struct {
	risk.Assessment
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BeltLevel  string `json:"belt_level"`
	MemberID   string `json:"member_id"`
	CardNumber string `json:"card_number"`
}

// Snapshot is a consistent read of a gym's students and their attendance summaries.
type Snapshot struct {
	Students []student.Student
	Index    risk.Index
}
