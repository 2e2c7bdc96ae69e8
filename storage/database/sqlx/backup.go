package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
)

const backupColumns = `id, gym_id, filename, location, size, created_by, created_at`

type backupRow struct {
	ID        int       `db:"id"`
	GymID     int       `db:"gym_id"`
	Filename  string    `db:"filename"`
	Location  string    `db:"location"`
	Size      int64     `db:"size"`
	CreatedBy null.Int  `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

type backupRepository struct {
	db core.DB
}

var _ backup.Repository = (*backupRepository)(nil) // interface compliance check

func NewBackupRepository(db core.DB) backup.Repository {
	return &backupRepository{db: db}
}

func (repo *backupRepository) Dump(ctx context.Context, gymID int) (backup.Snapshot, error) {
	var snap backup.Snapshot
	err := readTx(ctx, repo.db, func(tx core.DBExecutor) error {
		var err error
		if snap.Gym, err = getGym(ctx, tx, gymID); err != nil {
			return err
		}
		if snap.Admins, err = NewUserRepository(tx).QueryByGym(ctx, gymID); err != nil {
			return err
		}
		if snap.Students, err = NewStudentRepository(tx).Query(ctx, gymID); err != nil {
			return err
		}
		classes := NewClassRepository(tx)
		if snap.Classes, err = classes.QueryClasses(ctx, gymID); err != nil {
			return err
		}
		if snap.Schedules, err = classes.QuerySchedules(ctx, gymID); err != nil {
			return err
		}

		var logs []attendanceRow
		err = tx.SelectContext(ctx, &logs, `SELECT `+attendanceColumns+` FROM attendance_logs
			WHERE gym_id = $1 ORDER BY check_in_time, id`, gymID)
		if err != nil {
			return wrapErr(err, "querying attendance logs")
		}
		snap.Attendance = attendanceRows(logs)

		var notifs []notificationRow
		err = tx.SelectContext(ctx, &notifs, `SELECT `+notificationColumns+` FROM email_notifications
			WHERE gym_id = $1 ORDER BY sent_at, id`, gymID)
		if err != nil {
			return wrapErr(err, "querying notifications")
		}
		snap.Notifications = notificationRows(notifs)
		return nil
	})
	return snap, err
}

func (repo *backupRepository) Create(ctx context.Context, b backup.Backup) (backup.Backup, error) {
	b.CreatedAt = b.CreatedAt.UTC()
	id, err := insert(ctx, repo.db, `
		INSERT INTO backups (gym_id, filename, location, size, created_by, created_at)
		VALUES (:gym_id, :filename, :location, :size, :created_by, :created_at)
		RETURNING id`, backupRow{
		GymID:     b.GymID,
		Filename:  b.Filename,
		Location:  b.Location,
		Size:      b.Size,
		CreatedBy: null.NewInt(b.CreatedBy, b.CreatedBy != 0),
		CreatedAt: b.CreatedAt,
	})
	if err != nil {
		return backup.Backup{}, wrapErr(err, "inserting backup")
	}
	b.ID = id
	return b, nil
}

func (repo *backupRepository) Last(ctx context.Context, gymID int) (backup.Backup, error) {
	var row backupRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+backupColumns+` FROM backups
		WHERE gym_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, gymID)
	if err != nil {
		return backup.Backup{}, trapNoRowsErr(err, backup.ErrNotFound, "getting last backup")
	}
	return backup.Backup{
		ID:        row.ID,
		GymID:     row.GymID,
		Filename:  row.Filename,
		Location:  row.Location,
		Size:      row.Size,
		CreatedBy: row.CreatedBy.Int,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}
