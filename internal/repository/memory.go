package repository

import (
	"context"
	"sync"
	"time"
)

type quotaEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryQuotaRepository keeps quota windows in process memory. Expired
// windows are dropped at most once per window length, on the Allow path.
type MemoryQuotaRepository struct {
	mu        sync.Mutex
	entries   map[string]*quotaEntry
	nextSweep time.Time
	now       func() time.Time
}

func NewMemoryQuotaRepository() *MemoryQuotaRepository {
	return &MemoryQuotaRepository{
		entries: make(map[string]*quotaEntry),
		now:     time.Now,
	}
}

func (r *MemoryQuotaRepository) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !now.Before(r.nextSweep) {
		r.sweep(now)
		r.nextSweep = now.Add(window)
	}

	entry, ok := r.entries[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &quotaEntry{expiresAt: now.Add(window)}
		r.entries[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// sweep drops expired windows. Callers hold mu.
func (r *MemoryQuotaRepository) sweep(now time.Time) {
	for key, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, key)
		}
	}
}
