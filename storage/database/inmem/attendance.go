package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// queryAttendance returns the logs of the gym in check-in order. Must be called with db.mu held.
func (db *DB) queryAttendance(gymID int) []attendance.Log {
	logs := make([]attendance.Log, 0)
	for _, l := range db.attendance {
		if l.GymID == gymID {
			logs = append(logs, l)
		}
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CheckInTime.Before(logs[j].CheckInTime) })
	return logs
}

func (repo *attendanceRepository) Create(_ context.Context, l attendance.Log) (attendance.Log, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	l.ID = repo.db.nextID("attendance")
	repo.db.attendance = append(repo.db.attendance, l)
	return l, nil
}

func (repo *attendanceRepository) QueryRecent(_ context.Context, gymID, limit int) ([]attendance.Log, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	logs := repo.db.queryAttendance(gymID)
	recent := make([]attendance.Log, 0, len(logs))
	for i := len(logs) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, logs[i])
	}
	return recent, nil
}

func (repo *attendanceRepository) Snapshot(_ context.Context, gymID int) (attendance.Snapshot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]risk.Record, 0)
	for _, l := range repo.db.queryAttendance(gymID) {
		records = append(records, l.Record())
	}
	return attendance.Snapshot{
		Students: repo.db.queryStudents(gymID),
		Index:    risk.NewIndex(records...),
	}, nil
}

func (repo *attendanceRepository) Summary(_ context.Context, gymID, studentID int) (risk.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var sum risk.Summary
	for _, l := range repo.db.queryAttendance(gymID) {
		if l.StudentID != nil && *l.StudentID == studentID {
			if l.CheckInTime.After(sum.Last) {
				sum.Last = l.CheckInTime
			}
			sum.Visits++
		}
	}
	return sum, nil
}

func (repo *attendanceRepository) count(gymID int, match func(l attendance.Log) bool) int {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n := 0
	for _, l := range repo.db.attendance {
		if l.GymID == gymID && match(l) {
			n++
		}
	}
	return n
}

func (repo *attendanceRepository) Count(_ context.Context, gymID int) (int, error) {
	return repo.count(gymID, func(attendance.Log) bool { return true }), nil
}

func (repo *attendanceRepository) CountSince(_ context.Context, gymID int, since time.Time) (int, error) {
	return repo.count(gymID, func(l attendance.Log) bool { return !l.CheckInTime.Before(since) }), nil
}

func (repo *attendanceRepository) CountByCard(_ context.Context, gymID int) (int, error) {
	return repo.count(gymID, func(l attendance.Log) bool { return l.CardNumber != "" }), nil
}
