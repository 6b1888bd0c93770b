// Package presence keeps the set of online systems, keyed by system id, and
// expires systems whose heartbeats stop arriving.
//
// The Registry is the only owner of the record set. Every mutation goes through
// Touch or Sweep, both of which hold a single lock for O(1) work per record, and
// every read hands out copies.
package presence

import (
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/status-monitor/internal/constants"
)

var (
	ErrEmptyID   = errors.New("system id must not be empty")
	ErrEmptyName = errors.New("system name must not be empty")
)

// Listener receives presence transitions. Callbacks run after the registry lock
// is released, on the goroutine that caused the transition, and are delivered
// in the order the transitions were applied. A listener must not call back
// into the registry.
type Listener interface {
	SystemOnline(rec Record)
	SystemOffline(rec Record)
}

// Registry maps system id to its last heartbeat.
type Registry struct {
	timeout time.Duration

	mu      sync.RWMutex
	systems map[string]*Record

	// deliverMu is taken before mu is released whenever a transition has
	// listeners to notify, which keeps delivery in transition order.
	deliverMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewRegistry creates an empty registry. Systems that have not pinged for more
// than timeout are removed by Sweep.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = constants.DefaultPingTimeout
	}
	return &Registry{
		timeout: timeout,
		systems: make(map[string]*Record),
	}
}

// AddListener registers l for online/offline transitions.
func (r *Registry) AddListener(l Listener) {
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenersMu.Unlock()
}

// Timeout returns the heartbeat expiry window.
func (r *Registry) Timeout() time.Duration {
	return r.timeout
}

// Touch records a heartbeat from id at now. It reports whether the system was
// previously absent, in which case the record is created with FirstSeen = now.
// An empty kind is stored as constants.UnknownSystemType.
func (r *Registry) Touch(id, name, kind string, now time.Time) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	if name == "" {
		return false, ErrEmptyName
	}
	if kind == "" {
		kind = constants.UnknownSystemType
	}

	r.mu.Lock()
	rec, exists := r.systems[id]
	if exists {
		rec.Name = name
		rec.Kind = kind
		rec.LastPing = now
		r.mu.Unlock()
		return false, nil
	}

	rec = &Record{
		ID:        id,
		Name:      name,
		Kind:      kind,
		FirstSeen: now,
		LastPing:  now,
	}
	r.systems[id] = rec
	created := *rec
	r.deliverMu.Lock()
	r.mu.Unlock()

	r.notify(func(l Listener) { l.SystemOnline(created) })
	r.deliverMu.Unlock()
	return true, nil
}

// Sweep removes every system whose last ping is strictly older than the
// timeout and returns the removed ids. A system exactly at the timeout stays.
func (r *Registry) Sweep(now time.Time) []string {
	var expired []Record

	r.mu.Lock()
	for id, rec := range r.systems {
		if now.Sub(rec.LastPing) > r.timeout {
			expired = append(expired, *rec)
			delete(r.systems, id)
		}
	}
	if len(expired) == 0 {
		r.mu.Unlock()
		return []string{}
	}
	r.deliverMu.Lock()
	r.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, rec := range expired {
		ids = append(ids, rec.ID)
		r.notify(func(l Listener) { l.SystemOffline(rec) })
	}
	r.deliverMu.Unlock()
	return ids
}

// Snapshot returns a copy of every online system as seen at now.
// The order of the result is unspecified.
func (r *Registry) Snapshot(now time.Time) []SystemStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SystemStatus, 0, len(r.systems))
	for _, rec := range r.systems {
		out = append(out, rec.status(now))
	}
	return out
}

// Count returns the number of online systems.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.systems)
}

// Lookup returns a copy of the record for id, if the system is online.
func (r *Registry) Lookup(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.systems[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (r *Registry) notify(fn func(Listener)) {
	r.listenersMu.RLock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenersMu.RUnlock()

	for _, l := range listeners {
		fn(l)
	}
}
