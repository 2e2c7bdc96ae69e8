// Package risk classifies students by how long they have been absent and builds
// the at-risk report of a gym. It performs no I/O.
package risk

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// NeverAttended stands in for "no attendance on record". It ranks above any real day
// count and must only be compared, never used in arithmetic.
const NeverAttended = 999

type Level string

const (
	LevelNone   Level = "none"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

var (
	ErrInvalidThresholds = errors.New("invalid risk thresholds")

	levelRanks = map[Level]int{LevelNone: 0, LevelMedium: 1, LevelHigh: 2}
)

// Rank orders levels: none < medium < high.
func (l Level) Rank() int { return levelRanks[l] }

// Thresholds are inclusive lower bounds in days: Low starts the medium tier, High the high tier.
// Low == High collapses the medium tier (single cutoff).
type Thresholds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

var DefaultThresholds = Thresholds{Low: 7, High: 14}

// Flat is the single-cutoff scheme: at `days` or more a student is high risk.
func Flat(days int) Thresholds { return Thresholds{Low: days, High: days} }

func (th Thresholds) Validate() error {
	if th.Low < 0 || th.High < th.Low {
		return errors.Wrapf(ErrInvalidThresholds, "low=%d high=%d", th.Low, th.High)
	}
	return nil
}

// DaysSinceLastAttendance returns the whole days elapsed since `last` (partial days are not
// counted), or NeverAttended when there is none. A check-in later than `now` counts as today.
func DaysSinceLastAttendance(now time.Time, last *time.Time) int {
	if last == nil {
		return NeverAttended
	}
	days := int(now.Sub(*last) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

func (th Thresholds) Classify(daysAbsent int) Level {
	switch {
	case daysAbsent >= th.High:
		return LevelHigh
	case daysAbsent >= th.Low:
		return LevelMedium
	default:
		return LevelNone
	}
}

// Record is one check-in. StudentID is nil for walk-ins known only by name.
type Record struct {
	StudentID *int      `json:"student_id"`
	CheckIn   time.Time `json:"check_in_time"`
	ClassName string    `json:"class_name"`
}

// Summary is the attendance of one student: latest check-in and number of check-ins.
type Summary struct {
	Last   time.Time
	Visits int
}

// Index maps student IDs to their attendance summary.
type Index map[int]Summary

func NewIndex(records ...Record) Index {
	idx := make(Index)
	for _, rec := range records {
		if rec.StudentID == nil {
			continue
		}
		idx.Observe(*rec.StudentID, rec.CheckIn, 1)
	}
	return idx
}

// Observe merges `visits` check-ins whose latest is `last` into the student's summary.
func (idx Index) Observe(studentID int, last time.Time, visits int) {
	s := idx[studentID]
	if last.After(s.Last) {
		s.Last = last
	}
	s.Visits += visits
	idx[studentID] = s
}

func (idx Index) LastAttendance(studentID int) *time.Time {
	s, ok := idx[studentID]
	if !ok || s.Visits == 0 {
		return nil
	}
	last := s.Last
	return &last
}

// Member is the part of a student the report needs.
type Member struct {
	ID   int
	Name string
}

type Assessment struct {
	StudentID      int        `json:"student_id"`
	Name           string     `json:"name"`
	LastAttendance *time.Time `json:"last_attendance"`
	TotalClasses   int        `json:"total_classes"`
	DaysAbsent     int        `json:"days_absent"`
	Level          Level      `json:"risk_level"`
}

func (th Thresholds) Assess(now time.Time, m Member, idx Index) Assessment {
	last := idx.LastAttendance(m.ID)
	days := DaysSinceLastAttendance(now, last)
	return Assessment{
		StudentID:      m.ID,
		Name:           m.Name,
		LastAttendance: last,
		TotalClasses:   idx[m.ID].Visits,
		DaysAbsent:     days,
		Level:          th.Classify(days),
	}
}

// BuildAtRiskReport assesses every member and keeps those at risk: members who never attended
// first, then longest absent first (ties by name, then ID). The report is a snapshot; it is never nil.
func (th Thresholds) BuildAtRiskReport(now time.Time, members []Member, idx Index) []Assessment {
	report := make([]Assessment, 0)
	for _, m := range members {
		a := th.Assess(now, m, idx)
		if a.Level == LevelNone {
			continue
		}
		report = append(report, a)
	}
	sort.SliceStable(report, func(i, j int) bool {
		if iNever, jNever := report[i].LastAttendance == nil, report[j].LastAttendance == nil; iNever != jNever {
			return iNever
		}
		if report[i].DaysAbsent != report[j].DaysAbsent {
			return report[i].DaysAbsent > report[j].DaysAbsent
		}
		if report[i].Name != report[j].Name {
			return report[i].Name < report[j].Name
		}
		return report[i].StudentID < report[j].StudentID
	})
	return report
}
