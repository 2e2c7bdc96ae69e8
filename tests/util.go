package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

// CreateGym creates a gym on a 30 days professional trial, with its owner.
func CreateGym(t *testing.T, repo gym.Repository, name, ownerEmail, ownerPwd string, createdAt ...time.Time) (gym.Gym, user.User) {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	g := gym.Gym{
		Name:         name,
		Subdomain:    gym.Subdomain(name),
		OwnerName:    name + " Owner",
		OwnerEmail:   ownerEmail,
		Plan:         membership.PlanProfessional,
		Status:       membership.StatusTrial,
		TrialEnd:     tstamp.AddDate(0, 0, 30),
		AccessCode:   "Adelynn14",
		MonthlyValue: decimal.NewFromInt(197),
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	}
	owner := user.User{
		Name:      g.OwnerName,
		Email:     ownerEmail,
		CardCode:  user.NewCardCode(),
		Role:      user.RoleOwner,
		IsActive:  true,
		CreatedAt: tstamp,
	}
	if err := owner.SetPassword(ownerPwd); err != nil {
		t.Fatalf("CreateGym() failed: %v", err)
	}
	g, owner, err := repo.CreateWithOwner(context.Background(), g, owner)
	if err != nil {
		t.Fatalf("CreateGym() failed: %v", err)
	}
	return g, owner
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	gymID int,
	name, email, cardCode, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		GymID:     gymID,
		Name:      name,
		Email:     email,
		CardCode:  cardCode,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, gymID int, name, email, cardNumber string, createdAt ...time.Time) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s, err := repo.Create(context.Background(), student.Student{
		GymID:      gymID,
		Name:       name,
		Email:      email,
		BeltLevel:  student.BeltWhite,
		MemberID:   "M" + cardNumber,
		CardNumber: cardNumber,
		CreatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

// CheckIn appends an attendance log for `s` at `at`.
func CheckIn(t *testing.T, repo attendance.Repository, s student.Student, at time.Time) attendance.Log {
	t.Helper()

	id := s.ID
	l, err := repo.Create(context.Background(), attendance.Log{
		GymID:       s.GymID,
		StudentName: s.Name,
		StudentID:   &id,
		MemberID:    s.MemberID,
		CardNumber:  s.CardNumber,
		ClassName:   "Open Mat",
		CheckInTime: at.UTC(),
	})
	if err != nil {
		t.Fatalf("CheckIn() failed: %v", err)
	}
	return l
}
