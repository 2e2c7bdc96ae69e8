package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/risk"
)

const attendanceColumns = `id, gym_id, student_name, student_id, member_id, card_number, class_name,
	schedule_id, check_in_time, notes`

type attendanceRow struct {
	ID          int       `db:"id"`
	GymID       int       `db:"gym_id"`
	StudentName string    `db:"student_name"`
	StudentID   null.Int  `db:"student_id"`
	MemberID    string    `db:"member_id"`
	CardNumber  string    `db:"card_number"`
	ClassName   string    `db:"class_name"`
	ScheduleID  null.Int  `db:"schedule_id"`
	CheckInTime time.Time `db:"check_in_time"`
	Notes       string    `db:"notes"`
}

type summaryRow struct {
	StudentID int       `db:"student_id"`
	Last      time.Time `db:"last"`
	Visits    int       `db:"visits"`
}

func toAttendanceRow(l attendance.Log) attendanceRow {
	return attendanceRow{
		ID:          l.ID,
		GymID:       l.GymID,
		StudentName: l.StudentName,
		StudentID:   null.IntFromPtr(l.StudentID),
		MemberID:    l.MemberID,
		CardNumber:  l.CardNumber,
		ClassName:   l.ClassName,
		ScheduleID:  null.IntFromPtr(l.ScheduleID),
		CheckInTime: l.CheckInTime.UTC(),
		Notes:       l.Notes,
	}
}

func (r attendanceRow) log() attendance.Log {
	return attendance.Log{
		ID:          r.ID,
		GymID:       r.GymID,
		StudentName: r.StudentName,
		StudentID:   r.StudentID.Ptr(),
		MemberID:    r.MemberID,
		CardNumber:  r.CardNumber,
		ClassName:   r.ClassName,
		ScheduleID:  r.ScheduleID.Ptr(),
		CheckInTime: r.CheckInTime.UTC(),
		Notes:       r.Notes,
	}
}

func attendanceRows(rows []attendanceRow) []attendance.Log {
	logs := make([]attendance.Log, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.log())
	}
	return logs
}

type attendanceRepository struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db core.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) Create(ctx context.Context, l attendance.Log) (attendance.Log, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO attendance_logs (gym_id, student_name, student_id, member_id, card_number, class_name,
			schedule_id, check_in_time, notes)
		VALUES (:gym_id, :student_name, :student_id, :member_id, :card_number, :class_name,
			:schedule_id, :check_in_time, :notes)
		RETURNING id`, toAttendanceRow(l))
	if err != nil {
		return attendance.Log{}, wrapErr(err, "inserting attendance log")
	}
	l.ID = id
	return l, nil
}

func (repo *attendanceRepository) QueryRecent(ctx context.Context, gymID, limit int) ([]attendance.Log, error) {
	var rows []attendanceRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+attendanceColumns+` FROM attendance_logs
		WHERE gym_id = $1 ORDER BY check_in_time DESC, id DESC LIMIT $2`, gymID, limit)
	if err != nil {
		return nil, wrapErr(err, "querying attendance logs")
	}
	return attendanceRows(rows), nil
}

func (repo *attendanceRepository) Snapshot(ctx context.Context, gymID int) (attendance.Snapshot, error) {
	var snap attendance.Snapshot
	err := readTx(ctx, repo.db, func(tx core.DBExecutor) error {
		students, err := NewStudentRepository(tx).Query(ctx, gymID)
		if err != nil {
			return err
		}
		var rows []summaryRow
		err = tx.SelectContext(ctx, &rows, `
			SELECT student_id, MAX(check_in_time) AS last, COUNT(*) AS visits FROM attendance_logs
			WHERE gym_id = $1 AND student_id IS NOT NULL GROUP BY student_id`, gymID)
		if err != nil {
			return wrapErr(err, "summarizing attendance")
		}
		snap.Students = students
		snap.Index = make(risk.Index, len(rows))
		for _, r := range rows {
			snap.Index.Observe(r.StudentID, r.Last.UTC(), r.Visits)
		}
		return nil
	})
	return snap, err
}

func (repo *attendanceRepository) Summary(ctx context.Context, gymID, studentID int) (risk.Summary, error) {
	var row struct {
		Last   null.Time `db:"last"`
		Visits int       `db:"visits"`
	}
	err := repo.db.GetContext(ctx, &row, `
		SELECT MAX(check_in_time) AS last, COUNT(*) AS visits FROM attendance_logs
		WHERE gym_id = $1 AND student_id = $2`, gymID, studentID)
	if err != nil {
		return risk.Summary{}, wrapErr(err, "summarizing attendance")
	}
	return risk.Summary{Last: row.Last.Time.UTC(), Visits: row.Visits}, nil
}

func (repo *attendanceRepository) count(ctx context.Context, what, where string, args ...interface{}) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM attendance_logs WHERE `+where, args...); err != nil {
		return 0, wrapErr(err, "counting "+what)
	}
	return n, nil
}

func (repo *attendanceRepository) Count(ctx context.Context, gymID int) (int, error) {
	return repo.count(ctx, "check-ins", "gym_id = $1", gymID)
}

func (repo *attendanceRepository) CountSince(ctx context.Context, gymID int, since time.Time) (int, error) {
	return repo.count(ctx, "recent check-ins", "gym_id = $1 AND check_in_time >= $2", gymID, since.UTC())
}

func (repo *attendanceRepository) CountByCard(ctx context.Context, gymID int) (int, error) {
	return repo.count(ctx, "card check-ins", "gym_id = $1 AND card_number <> ''", gymID)
}
