package state

import (
	"context"
	"sync"
	"time"
)

// Key prefixes shared by the state managers
const (
	processedPrefix = "processed:"
	dailyPrefix     = "daily:"
)

// DailyTTL keeps a day counter alive past the end of any local day
const DailyTTL = 48 * time.Hour

// Manager keeps message markers and day counters in process memory.
// It is used when no Redis is configured and in tests.
type Manager struct {
	processed map[string]time.Time
	counters  map[string]int64
	now       func() time.Time
	mu        sync.Mutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		processed: make(map[string]time.Time),
		counters:  make(map[string]int64),
		now:       time.Now,
	}
}

// MarkProcessed records id and reports whether it was new
func (m *Manager) MarkProcessed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)

	key := processedPrefix + id
	if expires, ok := m.processed[key]; ok && now.Before(expires) {
		return false, nil
	}
	m.processed[key] = now.Add(ttl)
	return true, nil
}

// IncrDaily increments the counter of key for day
func (m *Manager) IncrDaily(_ context.Context, key, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dailyKey(key, day)
	m.counters[k]++
	return m.counters[k], nil
}

// DailyCount gets the counter of key for day
func (m *Manager) DailyCount(_ context.Context, key, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[dailyKey(key, day)], nil
}

func (m *Manager) evictLocked(now time.Time) {
	for k, expires := range m.processed {
		if !now.Before(expires) {
			delete(m.processed, k)
		}
	}
}

func dailyKey(key, day string) string {
	return dailyPrefix + key + ":" + day
}
