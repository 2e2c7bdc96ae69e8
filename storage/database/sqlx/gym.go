package sqlxrepos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

const gymColumns = `id, name, subdomain, owner_name, owner_email, phone, address, plan, status,
	trial_end, access_code, monthly_value, created_at, updated_at`

var gymConstraints = map[string]error{
	"gyms_subdomain_key": gym.ErrSubdomainExists,
}

type gymRow struct {
	ID           int             `db:"id"`
	Name         string          `db:"name"`
	Subdomain    string          `db:"subdomain"`
	OwnerName    string          `db:"owner_name"`
	OwnerEmail   string          `db:"owner_email"`
	Phone        null.String     `db:"phone"`
	Address      null.String     `db:"address"`
	Plan         string          `db:"plan"`
	Status       string          `db:"status"`
	TrialEnd     time.Time       `db:"trial_end"`
	AccessCode   string          `db:"access_code"`
	MonthlyValue decimal.Decimal `db:"monthly_value"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func toGymRow(g gym.Gym) gymRow {
	return gymRow{
		ID:           g.ID,
		Name:         g.Name,
		Subdomain:    g.Subdomain,
		OwnerName:    g.OwnerName,
		OwnerEmail:   g.OwnerEmail,
		Phone:        null.NewString(g.Phone, g.Phone != ""),
		Address:      null.NewString(g.Address, g.Address != ""),
		Plan:         string(g.Plan),
		Status:       string(g.Status),
		TrialEnd:     g.TrialEnd.UTC(),
		AccessCode:   g.AccessCode,
		MonthlyValue: g.MonthlyValue,
		CreatedAt:    g.CreatedAt.UTC(),
		UpdatedAt:    g.UpdatedAt.UTC(),
	}
}

func (r gymRow) gym() gym.Gym {
	return gym.Gym{
		ID:           r.ID,
		Name:         r.Name,
		Subdomain:    r.Subdomain,
		OwnerName:    r.OwnerName,
		OwnerEmail:   r.OwnerEmail,
		Phone:        r.Phone.String,
		Address:      r.Address.String,
		Plan:         membership.Plan(r.Plan),
		Status:       membership.Status(r.Status),
		TrialEnd:     r.TrialEnd.UTC(),
		AccessCode:   r.AccessCode,
		MonthlyValue: r.MonthlyValue,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type gymRepository struct {
	db core.DB
}

var _ gym.Repository = (*gymRepository)(nil) // interface compliance check

func NewGymRepository(db core.DB) gym.Repository {
	return &gymRepository{db: db}
}

func (repo *gymRepository) CreateWithOwner(ctx context.Context, g gym.Gym, owner user.User) (gym.Gym, user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return gym.Gym{}, user.User{}, wrapErr(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insert(ctx, tx, `
		INSERT INTO gyms (name, subdomain, owner_name, owner_email, phone, address, plan, status,
			trial_end, access_code, monthly_value, created_at, updated_at)
		VALUES (:name, :subdomain, :owner_name, :owner_email, :phone, :address, :plan, :status,
			:trial_end, :access_code, :monthly_value, :created_at, :updated_at)
		RETURNING id`, toGymRow(g))
	if err != nil {
		if e := constraintErr(err, gymConstraints); e != nil {
			return gym.Gym{}, user.User{}, e
		}
		return gym.Gym{}, user.User{}, wrapErr(err, "inserting gym")
	}
	g.ID = id

	owner.GymID = id
	owner, err = NewUserRepository(tx).Create(ctx, owner)
	if err != nil {
		return gym.Gym{}, user.User{}, wrapErr(err, "creating owner")
	}

	if err := tx.Commit(); err != nil {
		return gym.Gym{}, user.User{}, wrapErr(err, "committing transaction")
	}
	return g, owner, nil
}

func getGym(ctx context.Context, exec core.DBExecutor, id int) (gym.Gym, error) {
	var row gymRow
	if err := exec.GetContext(ctx, &row, `SELECT `+gymColumns+` FROM gyms WHERE id = $1`, id); err != nil {
		return gym.Gym{}, trapNoRowsErr(err, gym.ErrNotFound, "getting gym")
	}
	return row.gym(), nil
}

func (repo *gymRepository) GetByID(ctx context.Context, id int) (gym.Gym, error) {
	return getGym(ctx, repo.db, id)
}

func (repo *gymRepository) UpdateStatus(ctx context.Context, id int, status membership.Status, updatedAt time.Time) (gym.Gym, error) {
	var row gymRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE gyms SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+gymColumns,
		string(status), updatedAt.UTC(), id)
	if err != nil {
		return gym.Gym{}, trapNoRowsErr(err, gym.ErrNotFound, "updating gym status")
	}
	return row.gym(), nil
}
