package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

// entry pairs a session with its accumulator and per-session lock.
// All transitions for one session serialize on mu; independent sessions
// run fully in parallel.
type entry struct {
	mu         sync.Mutex
	session    *domain.Session
	acc        Accumulator
	lastActive time.Time
}

// Registry maps session ids to live session state.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) put(id string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = e
}

func (r *Registry) get(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep evicts sessions idle for longer than ttl and returns how many
// were removed. Ended sessions linger until the ttl so late summary and
// stats reads still resolve.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		e.mu.Lock()
		idle := e.lastActive.Before(cutoff)
		state := e.session.State
		e.mu.Unlock()
		if idle {
			delete(r.entries, id)
			removed++
			slog.Info("Session evicted", "session_id", id, "state", state)
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(ttl); n > 0 {
					slog.Info("Idle session sweep complete", "evicted", n)
				}
			}
		}
	}()
}
