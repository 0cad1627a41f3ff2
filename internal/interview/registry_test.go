package interview

import (
	"testing"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.put("fresh", &entry{
		session:    &domain.Session{ID: "fresh", State: domain.StateAsking},
		lastActive: now,
	})
	r.put("stale", &entry{
		session:    &domain.Session{ID: "stale", State: domain.StateAsking},
		lastActive: now.Add(-2 * time.Hour),
	})
	r.put("ended", &entry{
		session:    &domain.Session{ID: "ended", State: domain.StateEnded},
		lastActive: now.Add(-2 * time.Hour),
	})

	evicted := r.Sweep(time.Hour)
	if evicted != 2 {
		t.Errorf("Sweep evicted %d sessions, want 2", evicted)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if _, ok := r.get("fresh"); !ok {
		t.Error("fresh session was evicted")
	}
	if _, ok := r.get("stale"); ok {
		t.Error("stale session survived the sweep")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.put("a", &entry{session: &domain.Session{ID: "a"}})

	r.Remove("a")
	if _, ok := r.get("a"); ok {
		t.Error("session survived Remove")
	}
	// Removing an unknown id is a no-op.
	r.Remove("missing")
}
