package presence

import "time"

// Record is the registry's view of one online system.
type Record struct {
	ID        string    // Opaque identity supplied by the system, never changes
	Name      string    // Display label, last heartbeat wins
	Kind      string    // Category label, last heartbeat wins
	FirstSeen time.Time // Set when the record is created
	LastPing  time.Time // Overwritten on every heartbeat
}

// SystemStatus is a point-in-time copy of a record as reported to observers.
type SystemStatus struct {
	ID       string
	Name     string
	Kind     string
	LastPing time.Time
	Uptime   time.Duration
}

// status builds the observer view of the record at now.
func (r *Record) status(now time.Time) SystemStatus {
	return SystemStatus{
		ID:       r.ID,
		Name:     r.Name,
		Kind:     r.Kind,
		LastPing: r.LastPing,
		Uptime:   now.Sub(r.FirstSeen),
	}
}

// Clock returns the current time. Services inject it so tests can control time.
type Clock func() time.Time

// SystemClock is the wall clock. time.Now carries a monotonic reading, so
// durations between two readings are immune to wall clock jumps.
func SystemClock() time.Time {
	return time.Now()
}
