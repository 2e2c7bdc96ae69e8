// Package lockoutsvc counts failed logins and locks a login key out for a window once
// the maximum number of attempts is reached.
package lockoutsvc

import (
	"context"
	"sync"
	"time"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

var NowFunc = time.Now // mockable

type attempts struct {
	failures int
	first    time.Time
}

// MemoryStore keeps at most maxEntries keys; when full, expired keys are dropped first,
// then the oldest one.
type MemoryStore struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	maxEntries  int
	entries     map[string]*attempts
}

var _ user.LoginLimiter = (*MemoryStore)(nil)

func NewMemoryStore(conf core.LockoutConfig) *MemoryStore {
	return &MemoryStore{
		maxAttempts: conf.MaxAttempts,
		window:      conf.Window,
		maxEntries:  conf.MaxEntries,
		entries:     make(map[string]*attempts),
	}
}

func (s *MemoryStore) expired(a *attempts, now time.Time) bool {
	return now.Sub(a.first) >= s.window
}

func (s *MemoryStore) Allowed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.entries[key]
	if !ok {
		return true, nil
	}
	if s.expired(a, NowFunc()) {
		delete(s.entries, key)
		return true, nil
	}
	return a.failures < s.maxAttempts, nil
}

func (s *MemoryStore) Failed(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := NowFunc()
	if a, ok := s.entries[key]; ok && !s.expired(a, now) {
		a.failures++
		return nil
	}
	if _, ok := s.entries[key]; !ok && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evict(now)
	}
	s.entries[key] = &attempts{failures: 1, first: now}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evict must be called with s.mu held.
func (s *MemoryStore) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, a := range s.entries {
		if s.expired(a, now) {
			delete(s.entries, key)
			continue
		}
		if oldestKey == "" || a.first.Before(oldest) {
			oldestKey, oldest = key, a.first
		}
	}
	if len(s.entries) >= s.maxEntries && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
