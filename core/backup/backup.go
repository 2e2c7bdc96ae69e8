// Package backup exports all the records of a gym to a JSON document kept in blob storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

const FormatVersion = 1

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("no backup found")
)

type (
	// Snapshot is the document written to blob storage. Admin password hashes are never exported.
	Snapshot struct {
		Version       int                         `json:"version"`
		CreatedAt     time.Time                   `json:"created_at"`
		Gym           gym.Gym                     `json:"gym"`
		Admins        []user.User                 `json:"admins"`
		Students      []student.Student           `json:"students"`
		Classes       []class.Class               `json:"classes"`
		Schedules     []class.Schedule            `json:"schedules"`
		Attendance    []attendance.Log            `json:"attendance"`
		Notifications []notification.Notification `json:"notifications"`
	}

	Backup struct {
		ID        int       `json:"id"`
		GymID     int       `json:"gym_id"`
		Filename  string    `json:"filename"`
		Location  string    `json:"location"`
		Size      int64     `json:"size"`
		CreatedBy int       `json:"created_by"`
		CreatedAt time.Time `json:"created_at"`
	}

	Repository interface {
		// Dump reads every record of the gym from a single consistent view.
		Dump(ctx context.Context, gymID int) (Snapshot, error)
		Create(ctx context.Context, b Backup) (Backup, error)
		// Last returns ErrNotFound when the gym was never backed up.
		Last(ctx context.Context, gymID int) (Backup, error)
	}

	// Store persists a blob and returns where it was written.
	Store interface {
		Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	}

	Service struct {
		repo   Repository
		store  Store
		logger core.Logger
	}
)

func NewService(repo Repository, store Store, logger core.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger}
}

func Filename(gymID int, t time.Time) string {
	return fmt.Sprintf("backup_gym_%d_%s.json", gymID, t.UTC().Format("20060102_150405"))
}

// Create exports the gym on behalf of `usr`, who must be its owner.
func (svc *Service) Create(ctx context.Context, usr user.User) (Backup, error) {
	if !usr.IsOwner() {
		return Backup{}, core.ErrForbidden
	}
	snap, err := svc.repo.Dump(ctx, usr.GymID)
	if err != nil {
		return Backup{}, errors.Wrap(err, "dumping gym records")
	}
	now := NowFunc().UTC()
	snap.Version = FormatVersion
	snap.CreatedAt = now

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Backup{}, errors.Wrap(err, "encoding snapshot")
	}
	name := Filename(usr.GymID, now)
	loc, err := svc.store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		return Backup{}, errors.Wrap(err, "storing snapshot")
	}

	b, err := svc.repo.Create(ctx, Backup{
		GymID:     usr.GymID,
		Filename:  name,
		Location:  loc,
		Size:      int64(len(data)),
		CreatedBy: usr.ID,
		CreatedAt: now,
	})
	if err != nil {
		return Backup{}, errors.Wrap(err, "recording backup")
	}
	svc.logger.Info("backup created", map[string]interface{}{"location": loc, "size": b.Size}, usr)
	return b, nil
}

func (svc *Service) Last(ctx context.Context, gymID int) (Backup, error) {
	return svc.repo.Last(ctx, gymID)
}
