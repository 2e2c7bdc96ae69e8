package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

// Roles
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

var (
	AllRoles = []string{RoleOwner, RoleAdmin}

	rolePriorities = map[string]int{
		RoleOwner: 2,
		RoleAdmin: 1,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

// User is a gym admin: the staff account that manages one gym (tenant).
type User struct {
	ID           int        `json:"id"`
	GymID        int        `json:"gym_id"`
	GymName      string     `json:"gym_name"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	CardCode     string     `json:"card_code"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	PasswordHash []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	LastLogin    *time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// NewUser contains information needed to add an admin to an existing gym.
type NewUser struct {
	GymID           int    `json:"gym_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	CardCode        string `json:"card_code" validate:"omitempty,alphanum"`
	Role            string `json:"role" validate:"omitempty,oneof=owner admin"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.CardCode = core.CleanString(nu.CardCode)
	if nu.Role == "" {
		nu.Role = RoleAdmin
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email, nu.CardCode)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
