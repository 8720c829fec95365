package session

import (
	"sync"
	"time"
)

// revocations remembers login ids ended by logout until any cookie carrying
// them would have expired anyway.
type revocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	ttl time.Duration
	now func() time.Time
}

func newRevocations(ttl time.Duration) *revocations {
	return &revocations{ids: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (r *revocations) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.ids {
		if !now.Before(exp) {
			delete(r.ids, k)
		}
	}
	r.ids[id] = now.Add(r.ttl)
}

func (r *revocations) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.ids[id]
	return ok && r.now().Before(exp)
}
