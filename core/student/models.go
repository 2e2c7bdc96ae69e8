package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

// Belts in rank order.
const (
	BeltWhite  = "White"
	BeltBlue   = "Blue"
	BeltPurple = "Purple"
	BeltBrown  = "Brown"
	BeltBlack  = "Black"
)

var Belts = []string{BeltWhite, BeltBlue, BeltPurple, BeltBrown, BeltBlack}

// BeltRank returns the position of `belt` in Belts, or len(Belts) for unknown belts.
func BeltRank(belt string) int {
	for i, b := range Belts {
		if b == belt {
			return i
		}
	}
	return len(Belts)
}

type Student struct {
	ID         int       `json:"id"`
	GymID      int       `json:"gym_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	BeltLevel  string    `json:"belt_level"`
	MemberID   string    `json:"member_id"`
	CardNumber string    `json:"card_number"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewStudent contains information needed to enroll a Student.
// MemberID and CardNumber are generated when omitted.
type NewStudent struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	BeltLevel  string `json:"belt_level" validate:"omitempty,belt"`
	MemberID   string `json:"member_id" validate:"omitempty,alphanum,max=50"`
	CardNumber string `json:"card_number" validate:"omitempty,alphanum,max=50"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.BeltLevel = core.CleanString(ns.BeltLevel)
	ns.MemberID = core.CleanString(ns.MemberID)
	ns.CardNumber = core.CleanString(ns.CardNumber)
	if ns.BeltLevel == "" {
		ns.BeltLevel = BeltWhite
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent struct {
	Name       string `json:"name" validate:"omitempty,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	BeltLevel  string `json:"belt_level" validate:"omitempty,belt"`
	MemberID   string `json:"member_id" validate:"omitempty,alphanum,max=50"`
	CardNumber string `json:"card_number" validate:"omitempty,alphanum,max=50"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	keep := func(val *string, origVal string, lower ...bool) {
		if v := core.CleanString(*val, lower...); v != "" {
			*val = v
		} else {
			*val = origVal
		}
	}
	keep(&us.Name, orig.Name)
	keep(&us.Email, orig.Email, true /* lower */)
	keep(&us.Phone, orig.Phone)
	keep(&us.BeltLevel, orig.BeltLevel)
	keep(&us.MemberID, orig.MemberID)
	keep(&us.CardNumber, orig.CardNumber)
	return validate.Struct(us)
}
