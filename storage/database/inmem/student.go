package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// checkStudentUniqueness must be called with db.mu held.
func (db *DB) checkStudentUniqueness(gymID int, memberID, cardNumber string, excluded ...int) error {
	for _, s := range db.students {
		if s.GymID != gymID || isExcluded(s.ID, excluded) {
			continue
		}
		if s.MemberID == memberID {
			return student.ErrMemberIDExists
		}
		if s.CardNumber == cardNumber {
			return student.ErrCardNumberExists
		}
	}
	return nil
}

// queryStudents must be called with db.mu held.
func (db *DB) queryStudents(gymID int) []student.Student {
	students := make([]student.Student, 0)
	for _, s := range db.students {
		if s.GymID == gymID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students
}

func (repo *studentRepository) CheckUniqueness(_ context.Context, gymID int, memberID, cardNumber string, excluded ...student.Student) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]int, 0, len(excluded))
	for _, s := range excluded {
		ids = append(ids, s.ID)
	}
	return repo.db.checkStudentUniqueness(gymID, memberID, cardNumber, ids...)
}

func (repo *studentRepository) Create(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.checkStudentUniqueness(s.GymID, s.MemberID, s.CardNumber); err != nil {
		return student.Student{}, err
	}
	s.ID = repo.db.nextID("students")
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) Query(_ context.Context, gymID int) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryStudents(gymID), nil
}

func (repo *studentRepository) GetByID(_ context.Context, gymID, id int) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.students[id]; ok && s.GymID == gymID {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetByCardNumber(_ context.Context, gymID int, cardNumber string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.students {
		if s.GymID == gymID && s.CardNumber == cardNumber {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetByName(_ context.Context, gymID int, name string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var found *student.Student
	for _, s := range repo.db.students {
		if s.GymID != gymID || !strings.EqualFold(s.Name, name) {
			continue
		}
		if found == nil || s.CreatedAt.Before(found.CreatedAt) || (s.CreatedAt.Equal(found.CreatedAt) && s.ID < found.ID) {
			found = s
		}
	}
	if found == nil {
		return student.Student{}, student.ErrNotFound
	}
	return *found, nil
}

func (repo *studentRepository) Update(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.students[s.ID]
	if !ok || orig.GymID != s.GymID {
		return student.Student{}, student.ErrNotFound
	}
	if err := repo.db.checkStudentUniqueness(s.GymID, s.MemberID, s.CardNumber, s.ID); err != nil {
		return student.Student{}, err
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) Delete(_ context.Context, gymID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.students[id]
	if !ok || s.GymID != gymID {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	// attendance keeps the log but loses the link
	for i := range repo.db.attendance {
		if sid := repo.db.attendance[i].StudentID; sid != nil && *sid == id {
			repo.db.attendance[i].StudentID = nil
		}
	}
	return nil
}

func (repo *studentRepository) Count(_ context.Context, gymID int) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.queryStudents(gymID)), nil
}
