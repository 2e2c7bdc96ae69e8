// Package inmemdb implements the domain repositories in memory, for tests and local runs.
// A single lock guards all tables, which makes multi-table operations atomic.
package inmemdb

import (
	"sync"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/attendance"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/backup"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/class"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/notification"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

type DB struct {
	mu sync.RWMutex

	gyms          map[int]*gym.Gym
	users         map[int]*user.User
	students      map[int]*student.Student
	classes       map[int]*class.Class
	schedules     map[int]*class.Schedule
	attendance    []attendance.Log
	notifications []notification.Notification
	backups       []backup.Backup

	pkCount map[string]int
}

func Open() *DB {
	db := &DB{}
	db.init()
	return db
}

func (db *DB) init() {
	db.gyms = make(map[int]*gym.Gym)
	db.users = make(map[int]*user.User)
	db.students = make(map[int]*student.Student)
	db.classes = make(map[int]*class.Class)
	db.schedules = make(map[int]*class.Schedule)
	db.attendance = nil
	db.notifications = nil
	db.backups = nil
	db.pkCount = make(map[string]int)
}

// nextID must be called with db.mu held.
func (db *DB) nextID(table string) int {
	db.pkCount[table]++
	return db.pkCount[table]
}

// Reset empties all the tables.
func (db *DB) Reset() {
	db.mu.Lock()
	db.init()
	db.mu.Unlock()
}

func isExcluded(id int, excluded []int) bool {
	for _, e := range excluded {
		if e == id {
			return true
		}
	}
	return false
}
