package repository

import (
	"context"
	"sync"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/quota"
)

// MemoryStore is an in-memory Store used when persistence is disabled and
// in tests. Events are kept in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	events   []model.GoalEvent
	known    map[string]struct{}
	quota    quota.State
	hasQuota bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{known: make(map[string]struct{})}
}

// SaveEvents appends events whose ids have not been stored yet.
func (s *MemoryStore) SaveEvents(_ context.Context, events []model.GoalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		if _, ok := s.known[ev.ID]; ok {
			continue
		}
		s.known[ev.ID] = struct{}{}
		s.events = append(s.events, ev)
	}
	return nil
}

// RecentEvents returns up to limit stored events, newest first.
func (s *MemoryStore) RecentEvents(_ context.Context, limit int) ([]model.GoalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.GoalEvent, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.events[n-1-i]
	}
	return out, nil
}

// ExistingIDs reports which of the given ids are already stored.
func (s *MemoryStore) ExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := s.known[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// LoadQuota returns the stored request counter and whether one existed.
func (s *MemoryStore) LoadQuota(_ context.Context) (quota.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota, s.hasQuota, nil
}

// SaveQuota stores the request counter.
func (s *MemoryStore) SaveQuota(_ context.Context, state quota.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = state
	s.hasQuota = true
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
