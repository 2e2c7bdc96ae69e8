package inmemdb

import (
	"context"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
)

type backupRepository struct {
	db *DB
}

var _ backup.Repository = (*backupRepository)(nil) // interface compliance check

func NewBackupRepository(db *DB) backup.Repository {
	return &backupRepository{db: db}
}

func (repo *backupRepository) Dump(_ context.Context, gymID int) (backup.Snapshot, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	g, ok := repo.db.gyms[gymID]
	if !ok {
		return backup.Snapshot{}, gym.ErrNotFound
	}
	return backup.Snapshot{
		Gym:           *g,
		Admins:        repo.db.queryUsers(gymID),
		Students:      repo.db.queryStudents(gymID),
		Classes:       repo.db.queryClasses(gymID),
		Schedules:     repo.db.querySchedules(gymID),
		Attendance:    repo.db.queryAttendance(gymID),
		Notifications: repo.db.queryNotifications(gymID),
	}, nil
}

func (repo *backupRepository) Create(_ context.Context, b backup.Backup) (backup.Backup, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	b.ID = repo.db.nextID("backups")
	repo.db.backups = append(repo.db.backups, b)
	return b, nil
}

func (repo *backupRepository) Last(_ context.Context, gymID int) (backup.Backup, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for i := len(repo.db.backups) - 1; i >= 0; i-- {
		if b := repo.db.backups[i]; b.GymID == gymID {
			return b, nil
		}
	}
	return backup.Backup{}, backup.ErrNotFound
}
