package sqlxrepos

import (
	"context"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
)

const studentColumns = `id, gym_id, name, email, phone, belt_level, member_id, card_number, created_at`

var studentConstraints = map[string]error{
	"students_member_id_key":   student.ErrMemberIDExists,
	"students_card_number_key": student.ErrCardNumberExists,
}

type studentRow struct {
	ID         int       `db:"id"`
	GymID      int       `db:"gym_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	BeltLevel  string    `db:"belt_level"`
	MemberID   string    `db:"member_id"`
	CardNumber string    `db:"card_number"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r studentRow) student() student.Student {
	s := student.Student(r)
	s.CreatedAt = r.CreatedAt.UTC()
	return s
}

func studentRows(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) student.Repository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) CheckUniqueness(ctx context.Context, gymID int, memberID, cardNumber string, excluded ...student.Student) error {
	ids := make([]int, 0, len(excluded))
	for _, s := range excluded {
		ids = append(ids, s.ID)
	}
	var rows []studentRow
	err := repo.exec.SelectContext(ctx, &rows, `
		SELECT member_id, card_number FROM students
		WHERE gym_id = $1 AND (member_id = $2 OR card_number = $3) AND NOT (id = ANY($4))`,
		gymID, memberID, cardNumber, excludedIDs(ids))
	if err != nil {
		return wrapErr(err, "checking student uniqueness")
	}
	for _, r := range rows {
		if memberID != "" && r.MemberID == memberID {
			return student.ErrMemberIDExists
		}
	}
	if len(rows) > 0 {
		return student.ErrCardNumberExists
	}
	return nil
}

func (repo *studentRepository) Create(ctx context.Context, s student.Student) (student.Student, error) {
	s.CreatedAt = s.CreatedAt.UTC()
	id, err := insert(ctx, repo.exec, `
		INSERT INTO students (gym_id, name, email, phone, belt_level, member_id, card_number, created_at)
		VALUES (:gym_id, :name, :email, :phone, :belt_level, :member_id, :card_number, :created_at)
		RETURNING id`, studentRow(s))
	if err != nil {
		if e := constraintErr(err, studentConstraints); e != nil {
			return student.Student{}, e
		}
		return student.Student{}, wrapErr(err, "inserting student")
	}
	s.ID = id
	return s, nil
}

func (repo *studentRepository) Query(ctx context.Context, gymID int) ([]student.Student, error) {
	var rows []studentRow
	err := repo.exec.SelectContext(ctx, &rows,
		`SELECT `+studentColumns+` FROM students WHERE gym_id = $1 ORDER BY name, id`, gymID)
	if err != nil {
		return nil, wrapErr(err, "querying students")
	}
	return studentRows(rows), nil
}

func (repo *studentRepository) get(ctx context.Context, where string, args ...interface{}) (student.Student, error) {
	var row studentRow
	if err := repo.exec.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE `+where, args...); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.student(), nil
}

func (repo *studentRepository) GetByID(ctx context.Context, gymID, id int) (student.Student, error) {
	return repo.get(ctx, "gym_id = $1 AND id = $2", gymID, id)
}

func (repo *studentRepository) GetByCardNumber(ctx context.Context, gymID int, cardNumber string) (student.Student, error) {
	return repo.get(ctx, "gym_id = $1 AND card_number = $2", gymID, cardNumber)
}

func (repo *studentRepository) GetByName(ctx context.Context, gymID int, name string) (student.Student, error) {
	return repo.get(ctx, "gym_id = $1 AND lower(name) = lower($2) ORDER BY created_at, id LIMIT 1", gymID, name)
}

func (repo *studentRepository) Update(ctx context.Context, s student.Student) (student.Student, error) {
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE students SET name = :name, email = :email, phone = :phone, belt_level = :belt_level,
			member_id = :member_id, card_number = :card_number
		WHERE gym_id = :gym_id AND id = :id`, studentRow(s))
	if err != nil {
		if e := constraintErr(err, studentConstraints); e != nil {
			return student.Student{}, e
		}
		return student.Student{}, wrapErr(err, "updating student")
	}
	if err := mustAffect(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) Delete(ctx context.Context, gymID, id int) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM students WHERE gym_id = $1 AND id = $2`, gymID, id)
	if err != nil {
		return wrapErr(err, "deleting student")
	}
	return mustAffect(res, student.ErrNotFound)
}

func (repo *studentRepository) Count(ctx context.Context, gymID int) (int, error) {
	var n int
	if err := repo.exec.GetContext(ctx, &n, `SELECT COUNT(*) FROM students WHERE gym_id = $1`, gymID); err != nil {
		return 0, wrapErr(err, "counting students")
	}
	return n, nil
}
