package inmemdb

import (
	"context"
	"sort"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// withGymName must be called with db.mu held.
func (db *DB) withGymName(usr user.User) user.User {
	if g, ok := db.gyms[usr.GymID]; ok {
		usr.GymName = g.Name
	}
	return usr
}

// checkUserUniqueness must be called with db.mu held.
func (db *DB) checkUserUniqueness(email, cardCode string, excluded ...int) error {
	for _, usr := range db.users {
		if isExcluded(usr.ID, excluded) {
			continue
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
		if cardCode != "" && usr.CardCode == cardCode {
			return user.ErrCardCodeExists
		}
	}
	return nil
}

// createUser must be called with db.mu held.
func (db *DB) createUser(usr user.User) (user.User, error) {
	if err := db.checkUserUniqueness(usr.Email, usr.CardCode); err != nil {
		return user.User{}, err
	}
	usr.ID = db.nextID("users")
	db.users[usr.ID] = &usr
	return db.withGymName(usr), nil
}

func (repo *userRepository) CheckUniqueness(_ context.Context, email, cardCode string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make([]int, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	return repo.db.checkUserUniqueness(email, cardCode, ids...)
}

func (repo *userRepository) Create(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.db.createUser(usr)
}

func (repo *userRepository) find(match func(usr *user.User) bool) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if match(usr) {
			return repo.db.withGymName(*usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetByID(_ context.Context, id int) (user.User, error) {
	return repo.find(func(usr *user.User) bool { return usr.ID == id })
}

func (repo *userRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	return repo.find(func(usr *user.User) bool { return email != "" && usr.Email == email })
}

func (repo *userRepository) GetByCardCode(_ context.Context, code string) (user.User, error) {
	return repo.find(func(usr *user.User) bool { return usr.CardCode == code })
}

// queryUsers must be called with db.mu held.
func (db *DB) queryUsers(gymID int) []user.User {
	users := make([]user.User, 0)
	for _, usr := range db.users {
		if usr.GymID == gymID {
			users = append(users, db.withGymName(*usr))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) QueryByGym(_ context.Context, gymID int) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryUsers(gymID), nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.LastLogin = usr.LastLogin
	return usr, nil
}

func (repo *userRepository) SetPassword(_ context.Context, usr user.User) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	orig.PasswordHash = usr.PasswordHash
	return nil
}
