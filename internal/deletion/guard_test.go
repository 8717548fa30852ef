package deletion

import (
	"sync"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/errors"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestGuard() (*Guard, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewGuardWithClock(clock.Now), clock
}

func TestConfirm_ImmediatelyAfterRequest(t *testing.T) {
	g, _ := newTestGuard()
	g.Request(4)

	if err := g.Confirm(4); err != nil {
		t.Errorf("Confirm() = %v, want nil", err)
	}
}

func TestConfirm_WithoutRequest(t *testing.T) {
	g, _ := newTestGuard()

	err := g.Confirm(4)
	if !errors.IsKind(err, errors.KindConfirmationRequired) {
		t.Errorf("Confirm() = %v, want ConfirmationRequired", err)
	}
}

func TestConfirm_Window(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr bool
	}{
		{"just inside", 29*time.Second + 999*time.Millisecond, false},
		{"exactly at window", 30 * time.Second, true},
		{"after window", 31 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, clock := newTestGuard()
			g.Request(9)
			clock.Advance(tt.elapsed)

			err := g.Confirm(9)
			if (err != nil) != tt.wantErr {
				t.Errorf("Confirm() after %v = %v, wantErr %v", tt.elapsed, err, tt.wantErr)
			}
		})
	}
}

func TestRequest_Overwrites(t *testing.T) {
	g, clock := newTestGuard()
	g.Request(2)
	clock.Advance(25 * time.Second)
	g.Request(2)
	clock.Advance(25 * time.Second)

	if err := g.Confirm(2); err != nil {
		t.Errorf("Confirm() = %v, want nil after refreshed request", err)
	}
}

func TestConfirm_DoesNotConsume(t *testing.T) {
	g, _ := newTestGuard()
	g.Request(1)

	_ = g.Confirm(1)
	if err := g.Confirm(1); err != nil {
		t.Errorf("second Confirm() = %v, want nil", err)
	}

	g.Clear(1)
	if err := g.Confirm(1); err == nil {
		t.Error("Confirm() after Clear should fail")
	}
}

func TestTickets_PerID(t *testing.T) {
	g, _ := newTestGuard()
	g.Request(1)

	if err := g.Confirm(2); err == nil {
		t.Error("a ticket for id 1 must not confirm id 2")
	}
}

func TestPendingAndPrune(t *testing.T) {
	g, clock := newTestGuard()
	g.Request(1)
	clock.Advance(20 * time.Second)
	g.Request(2)
	clock.Advance(15 * time.Second)

	pending := g.Pending()
	if _, ok := pending[1]; ok {
		t.Error("id 1 should have expired")
	}
	if _, ok := pending[2]; !ok {
		t.Error("id 2 should be pending")
	}

	if n := g.Prune(); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if err := g.Confirm(2); err != nil {
		t.Errorf("Confirm(2) = %v after prune", err)
	}
}

func TestRequested(t *testing.T) {
	g, clock := newTestGuard()
	if g.Requested(5) {
		t.Error("Requested(5) should be false before any request")
	}

	g.Request(5)
	if !g.Requested(5) {
		t.Error("Requested(5) should be true right after a request")
	}
	if g.Requested(6) {
		t.Error("tickets are per id")
	}

	clock.Advance(Window)
	if g.Requested(5) {
		t.Error("Requested(5) should be false once the window has passed")
	}

	g.Request(5)
	g.Clear(5)
	if g.Requested(5) {
		t.Error("Requested(5) should be false after Clear")
	}
}
