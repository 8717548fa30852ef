// Package deletion implements the two-phase delete protocol: a node can
// only be destroyed within Window of a prior deletion request.
package deletion

import (
	"sync"
	"time"

	"github.com/ruche-hive/ruche/internal/errors"
)

// Window is how long a deletion request stays valid.
const Window = 30 * time.Second

// Guard records when deletion was last requested for each node. Tickets
// live in memory only and are lost on restart.
type Guard struct {
	mu      sync.RWMutex
	tickets map[int]time.Time
	now     func() time.Time
}

// NewGuard creates an empty Guard using the wall clock.
func NewGuard() *Guard {
	return NewGuardWithClock(time.Now)
}

// NewGuardWithClock creates a Guard reading time from now.
func NewGuardWithClock(now func() time.Time) *Guard {
	return &Guard{
		tickets: make(map[int]time.Time),
		now:     now,
	}
}

// Request records a deletion request for id, replacing any earlier one.
func (g *Guard) Request(id int) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.now()
	g.tickets[id] = t
	return t
}

// Confirm returns ConfirmationRequired unless a request for id was made
// less than Window ago. The ticket is left in place.
func (g *Guard) Confirm(id int) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tickets[id]
	if !ok || g.now().Sub(t) >= Window {
		return errors.ConfirmationRequired(id)
	}
	return nil
}

// Requested reports whether id holds a ticket that has not yet expired.
func (g *Guard) Requested(id int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tickets[id]
	return ok && g.now().Sub(t) < Window
}

// Clear drops the ticket for id.
func (g *Guard) Clear(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.tickets, id)
}

// Pending returns the ids holding a ticket that has not yet expired.
func (g *Guard) Pending() map[int]time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	now := g.now()
	out := make(map[int]time.Time)
	for id, t := range g.tickets {
		if now.Sub(t) < Window {
			out[id] = t
		}
	}
	return out
}

// Prune drops expired tickets and returns how many were removed.
func (g *Guard) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	n := 0
	for id, t := range g.tickets {
		if now.Sub(t) >= Window {
			delete(g.tickets, id)
			n++
		}
	}
	return n
}
