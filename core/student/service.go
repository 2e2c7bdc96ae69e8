package student

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("student not found")
	ErrMemberIDExists   = errors.New("a student with this member id already exists")
	ErrCardNumberExists = errors.New("a student with this card number already exists")
)

type (
	// Repository scopes every operation to one gym.
	Repository interface {
		// CheckUniqueness returns ErrMemberIDExists or ErrCardNumberExists when another
		// student of the gym holds them.
		CheckUniqueness(ctx context.Context, gymID int, memberID, cardNumber string, excluded ...Student) error
		Create(ctx context.Context, s Student) (Student, error)
		Query(ctx context.Context, gymID int) ([]Student, error)
		GetByID(ctx context.Context, gymID, id int) (Student, error)
		GetByCardNumber(ctx context.Context, gymID int, cardNumber string) (Student, error)
		// GetByName matches the name case-insensitively; the oldest student wins on duplicates.
		GetByName(ctx context.Context, gymID int, name string) (Student, error)
		Update(ctx context.Context, s Student) (Student, error)
		Delete(ctx context.Context, gymID, id int) error
		Count(ctx context.Context, gymID int) (int, error)
	}

	Service interface {
		Create(ctx context.Context, gymID int, ns NewStudent) (Student, error)
		Query(ctx context.Context, gymID int) ([]Student, error)
		GetByID(ctx context.Context, gymID, id int) (Student, error)
		GetByCardNumber(ctx context.Context, gymID int, cardNumber string) (Student, error)
		GetByName(ctx context.Context, gymID int, name string) (Student, error)
		Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, gymID, id int) error
		Count(ctx context.Context, gymID int) (int, error)
	}

	service struct {
		repo Repository
	}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) checkUniqueness(ctx context.Context, gymID int, memberID, cardNumber string, excl ...Student) error {
	if err := svc.repo.CheckUniqueness(ctx, gymID, memberID, cardNumber, excl...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrMemberIDExists:
			field = "member_id"
		case ErrCardNumberExists:
			field = "card_number"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewFieldError(field, err)
	}
	return nil
}

// Create enrolls a student. Missing member ids become MBR%03d and missing card numbers
// CARD%04d, both derived from the current number of students of the gym.
func (svc *service) Create(ctx context.Context, gymID int, ns NewStudent) (Student, error) {
	if ns.MemberID == "" || ns.CardNumber == "" {
		count, err := svc.repo.Count(ctx, gymID)
		if err != nil {
			return Student{}, errors.Wrap(err, "counting students")
		}
		if ns.MemberID == "" {
			ns.MemberID = fmt.Sprintf("MBR%03d", count+1)
		}
		if ns.CardNumber == "" {
			ns.CardNumber = fmt.Sprintf("CARD%04d", count+1001)
		}
	}
	if ns.BeltLevel == "" {
		ns.BeltLevel = BeltWhite
	}
	if err := svc.checkUniqueness(ctx, gymID, ns.MemberID, ns.CardNumber); err != nil {
		return Student{}, err
	}

	s := Student{
		GymID:      gymID,
		Name:       ns.Name,
		Email:      ns.Email,
		Phone:      ns.Phone,
		BeltLevel:  ns.BeltLevel,
		MemberID:   ns.MemberID,
		CardNumber: ns.CardNumber,
		CreatedAt:  NowFunc().UTC(),
	}
	return svc.repo.Create(ctx, s)
}

func (svc *service) Query(ctx context.Context, gymID int) ([]Student, error) {
	return svc.repo.Query(ctx, gymID)
}

func (svc *service) GetByID(ctx context.Context, gymID, id int) (Student, error) {
	return svc.repo.GetByID(ctx, gymID, id)
}

func (svc *service) GetByCardNumber(ctx context.Context, gymID int, cardNumber string) (Student, error) {
	return svc.repo.GetByCardNumber(ctx, gymID, core.CleanString(cardNumber))
}

func (svc *service) GetByName(ctx context.Context, gymID int, name string) (Student, error) {
	return svc.repo.GetByName(ctx, gymID, core.CleanString(name))
}

func (svc *service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	if err := svc.checkUniqueness(ctx, orig.GymID, us.MemberID, us.CardNumber, orig); err != nil {
		return Student{}, err
	}
	s := orig
	s.Name = us.Name
	s.Email = us.Email
	s.Phone = us.Phone
	s.BeltLevel = us.BeltLevel
	s.MemberID = us.MemberID
	s.CardNumber = us.CardNumber
	return svc.repo.Update(ctx, s)
}

func (svc *service) Delete(ctx context.Context, gymID, id int) error {
	return svc.repo.Delete(ctx, gymID, id)
}

func (svc *service) Count(ctx context.Context, gymID int) (int, error) {
	return svc.repo.Count(ctx, gymID)
}
