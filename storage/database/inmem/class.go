package inmemdb

import (
	"context"
	"sort"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

// queryClasses must be called with db.mu held.
func (db *DB) queryClasses(gymID int) []class.Class {
	classes := make([]class.Class, 0)
	for _, c := range db.classes {
		if c.GymID == gymID {
			classes = append(classes, *c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes
}

// querySchedules must be called with db.mu held.
func (db *DB) querySchedules(gymID int) []class.Schedule {
	schedules := make([]class.Schedule, 0)
	for _, s := range db.schedules {
		if s.GymID == gymID {
			schedules = append(schedules, *s)
		}
	}
	sort.Slice(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return schedules
}

// checkClassName must be called with db.mu held.
func (db *DB) checkClassName(gymID int, name string) error {
	for _, c := range db.classes {
		if c.GymID == gymID && c.Name == name {
			return class.ErrNameExists
		}
	}
	return nil
}

func (repo *classRepository) CheckNameUniqueness(_ context.Context, gymID int, name string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.checkClassName(gymID, name)
}

func (repo *classRepository) CreateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.checkClassName(c.GymID, c.Name); err != nil {
		return class.Class{}, err
	}

	c.ID = repo.db.nextID("classes")
	repo.db.classes[c.ID] = &c
	return c, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, gymID int) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryClasses(gymID), nil
}

func (repo *classRepository) DeleteClass(_ context.Context, gymID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.classes[id]
	if !ok || c.GymID != gymID {
		return class.ErrNotFound
	}
	delete(repo.db.classes, id)
	return nil
}

func (repo *classRepository) CountClasses(_ context.Context, gymID int) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.queryClasses(gymID)), nil
}

func (repo *classRepository) CreateSchedule(_ context.Context, s class.Schedule) (class.Schedule, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = repo.db.nextID("schedules")
	repo.db.schedules[s.ID] = &s
	return s, nil
}

func (repo *classRepository) QuerySchedules(_ context.Context, gymID int) ([]class.Schedule, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.querySchedules(gymID), nil
}

func (repo *classRepository) DeleteSchedule(_ context.Context, gymID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.schedules[id]
	if !ok || s.GymID != gymID {
		return class.ErrScheduleNotFound
	}
	delete(repo.db.schedules, id)
	for i := range repo.db.attendance {
		if sid := repo.db.attendance[i].ScheduleID; sid != nil && *sid == id {
			repo.db.attendance[i].ScheduleID = nil
		}
	}
	return nil
}

func (repo *classRepository) CountSchedulesOn(_ context.Context, gymID, dayOfWeek int) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n := 0
	for _, s := range repo.db.schedules {
		if s.GymID == gymID && s.DayOfWeek == dayOfWeek {
			n++
		}
	}
	return n, nil
}

func (repo *classRepository) ScheduleAt(_ context.Context, gymID, dayOfWeek int, hhmm string) (class.Schedule, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.querySchedules(gymID) {
		if s.DayOfWeek == dayOfWeek && s.StartTime <= hhmm && hhmm <= s.EndTime {
			return s, nil
		}
	}
	return class.Schedule{}, class.ErrScheduleNotFound
}
