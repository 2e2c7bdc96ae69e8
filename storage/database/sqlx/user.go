package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

const userColumns = `a.id, a.gym_id, g.name AS gym_name, a.name, a.email, a.card_code, a.role,
	a.is_active, a.password_hash, a.created_at, a.last_login`

const userSelect = `SELECT ` + userColumns + ` FROM gym_admins a JOIN gyms g ON g.id = a.gym_id`

var userConstraints = map[string]error{
	"gym_admins_email_key":     user.ErrEmailExists,
	"gym_admins_card_code_key": user.ErrCardCodeExists,
}

type userRow struct {
	ID           int         `db:"id"`
	GymID        int         `db:"gym_id"`
	GymName      string      `db:"gym_name"`
	Name         string      `db:"name"`
	Email        null.String `db:"email"`
	CardCode     string      `db:"card_code"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		GymID:        usr.GymID,
		GymName:      usr.GymName,
		Name:         usr.Name,
		Email:        null.NewString(usr.Email, usr.Email != ""),
		CardCode:     usr.CardCode,
		Role:         usr.Role,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		LastLogin:    null.TimeFromPtr(usr.LastLogin),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		GymID:        r.GymID,
		GymName:      r.GymName,
		Name:         r.Name,
		Email:        r.Email.String,
		CardCode:     r.CardCode,
		Role:         r.Role,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		LastLogin:    utcPtr(r.LastLogin),
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time.UTC()
	return &tt
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) user.Repository {
	return &userRepository{exec: exec}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, email, cardCode string, excludedUsers ...user.User) error {
	ids := make([]int, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	var rows []userRow
	err := repo.exec.SelectContext(ctx, &rows,
		`SELECT email, card_code FROM gym_admins WHERE (email = $1 OR card_code = $2) AND NOT (id = ANY($3))`,
		null.NewString(email, email != ""), cardCode, excludedIDs(ids))
	if err != nil {
		return wrapErr(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if email != "" && r.Email.String == email {
			return user.ErrEmailExists
		}
	}
	if len(rows) > 0 {
		return user.ErrCardCodeExists
	}
	return nil
}

func (repo *userRepository) Create(ctx context.Context, usr user.User) (user.User, error) {
	id, err := insert(ctx, repo.exec, `
		INSERT INTO gym_admins (gym_id, name, email, card_code, role, is_active, password_hash, created_at, last_login)
		VALUES (:gym_id, :name, :email, :card_code, :role, :is_active, :password_hash, :created_at, :last_login)
		RETURNING id`, toUserRow(usr))
	if err != nil {
		if e := constraintErr(err, userConstraints); e != nil {
			return user.User{}, e
		}
		return user.User{}, wrapErr(err, "inserting user")
	}
	return repo.GetByID(ctx, id)
}

func (repo *userRepository) get(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	if err := repo.exec.GetContext(ctx, &row, userSelect+" WHERE "+where, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetByID(ctx context.Context, id int) (user.User, error) {
	return repo.get(ctx, "a.id = $1", id)
}

func (repo *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, "a.email = $1", email)
}

func (repo *userRepository) GetByCardCode(ctx context.Context, code string) (user.User, error) {
	return repo.get(ctx, "a.card_code = $1", code)
}

func (repo *userRepository) QueryByGym(ctx context.Context, gymID int) ([]user.User, error) {
	var rows []userRow
	if err := repo.exec.SelectContext(ctx, &rows, userSelect+" WHERE a.gym_id = $1 ORDER BY a.id", gymID); err != nil {
		return nil, wrapErr(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.exec.ExecContext(ctx, `UPDATE gym_admins SET last_login = $1 WHERE id = $2`,
		null.TimeFromPtr(usr.LastLogin), usr.ID)
	if err != nil {
		return user.User{}, wrapErr(err, "updating last login")
	}
	if err := mustAffect(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) SetPassword(ctx context.Context, usr user.User) error {
	res, err := repo.exec.ExecContext(ctx, `UPDATE gym_admins SET password_hash = $1 WHERE id = $2`, usr.PasswordHash, usr.ID)
	if err != nil {
		return wrapErr(err, "updating password")
	}
	return mustAffect(res, user.ErrNotFound)
}
