package inmemdb

import (
	"context"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/gym"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/membership"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

type gymRepository struct {
	db *DB
}

var _ gym.Repository = (*gymRepository)(nil) // interface compliance check

func NewGymRepository(db *DB) gym.Repository {
	return &gymRepository{db: db}
}

func (repo *gymRepository) CreateWithOwner(_ context.Context, g gym.Gym, owner user.User) (gym.Gym, user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, other := range repo.db.gyms {
		if other.Subdomain == g.Subdomain {
			return gym.Gym{}, user.User{}, gym.ErrSubdomainExists
		}
	}
	if err := repo.db.checkUserUniqueness(owner.Email, owner.CardCode); err != nil {
		return gym.Gym{}, user.User{}, err
	}

	g.ID = repo.db.nextID("gyms")
	repo.db.gyms[g.ID] = &g
	owner.GymID = g.ID
	owner, err := repo.db.createUser(owner)
	if err != nil {
		delete(repo.db.gyms, g.ID)
		return gym.Gym{}, user.User{}, err
	}
	return g, owner, nil
}

func (repo *gymRepository) GetByID(_ context.Context, id int) (gym.Gym, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if g, ok := repo.db.gyms[id]; ok {
		return *g, nil
	}
	return gym.Gym{}, gym.ErrNotFound
}

func (repo *gymRepository) UpdateStatus(_ context.Context, id int, status membership.Status, updatedAt time.Time) (gym.Gym, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	g, ok := repo.db.gyms[id]
	if !ok {
		return gym.Gym{}, gym.ErrNotFound
	}
	g.Status = status
	g.UpdatedAt = updatedAt.UTC()
	return *g, nil
}
