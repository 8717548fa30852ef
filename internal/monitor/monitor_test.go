package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/system"
)

type fakeNodes struct {
	nodes       []*node.Info
	status      map[int]health.Status
	listErr     error
	recreateErr error
	recreated   []int
}

func newFakeNodes(ids ...int) *fakeNodes {
	f := &fakeNodes{status: make(map[int]health.Status)}
	for _, id := range ids {
		f.nodes = append(f.nodes, &node.Info{ID: id, Name: node.ContainerName(id)})
		f.status[id] = health.StatusHealthy
	}
	return f
}

func (f *fakeNodes) List(context.Context) ([]*node.Info, error) {
	return f.nodes, f.listErr
}

func (f *fakeNodes) Health(_ context.Context, id int) (*health.CheckResult, error) {
	status, ok := f.status[id]
	if !ok {
		return nil, fmt.Errorf("no such node")
	}
	return &health.CheckResult{ID: id, Name: node.ContainerName(id), Status: status}, nil
}

func (f *fakeNodes) Recreate(_ context.Context, id int) error {
	f.recreated = append(f.recreated, id)
	if f.recreateErr != nil {
		return f.recreateErr
	}
	f.status[id] = health.StatusHealthy
	return nil
}

func TestMonitor_New(t *testing.T) {
	m := New(30*time.Second, newFakeNodes())
	if m.interval != 30*time.Second {
		t.Errorf("interval = %v, want %v", m.interval, 30*time.Second)
	}
	if m.autoRecreate {
		t.Error("autoRecreate should default to false")
	}
	if m.auditLog != nil {
		t.Error("auditLog should default to nil")
	}
}

func TestMonitor_Options(t *testing.T) {
	m := New(time.Minute, newFakeNodes(),
		WithAutoRecreate(true),
		WithAuditLogger(audit.NewLogger(t.TempDir(), nil)),
	)

	if !m.autoRecreate {
		t.Error("autoRecreate should be true")
	}
	if m.auditLog == nil {
		t.Error("auditLog should be set")
	}
}

func TestMonitor_CheckAllEmpty(t *testing.T) {
	m := New(time.Second, newFakeNodes())
	if results := m.CheckAll(context.Background()); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestMonitor_CheckAllListError(t *testing.T) {
	f := newFakeNodes(1)
	f.listErr = fmt.Errorf("registry down")

	if results := New(time.Second, f).CheckAll(context.Background()); results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestMonitor_AuditsTransitionsOnly(t *testing.T) {
	fs := system.NewMockFS()
	logger := audit.NewLogger("/audit", fs)
	f := newFakeNodes(1)
	m := New(time.Second, f, WithAuditLogger(logger))
	ctx := context.Background()

	m.CheckAll(ctx)
	m.CheckAll(ctx)
	f.status[1] = health.StatusUnhealthy
	m.CheckAll(ctx)

	events, err := logger.Events(1)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Details != "healthy" || events[1].Details != "unhealthy" {
		t.Errorf("events = %+v", events)
	}
	if events[1].Type != audit.EventHealth {
		t.Errorf("Type = %s, want health", events[1].Type)
	}
}

func TestMonitor_AutoRecreate(t *testing.T) {
	f := newFakeNodes(1, 2, 3)
	f.status[2] = health.StatusMissing
	f.status[3] = health.StatusStopped

	m := New(time.Second, f, WithAutoRecreate(true))
	results := m.CheckAll(context.Background())

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if len(f.recreated) != 1 || f.recreated[0] != 2 {
		t.Errorf("recreated %v, want [2]", f.recreated)
	}
}

func TestMonitor_AutoRecreateDisabled(t *testing.T) {
	f := newFakeNodes(1)
	f.status[1] = health.StatusMissing

	New(time.Second, f).CheckAll(context.Background())
	if len(f.recreated) != 0 {
		t.Errorf("recreated %v, want none", f.recreated)
	}
}

func TestMonitor_AutoRecreateFailure(t *testing.T) {
	fs := system.NewMockFS()
	logger := audit.NewLogger("/audit", fs)
	f := newFakeNodes(1)
	f.status[1] = health.StatusMissing
	f.recreateErr = fmt.Errorf("image pull failed")

	New(time.Second, f, WithAutoRecreate(true), WithAuditLogger(logger)).CheckAll(context.Background())

	events, _ := logger.Events(1)
	if len(events) != 2 || events[1].Type != audit.EventError {
		t.Errorf("events = %+v, want health then error", events)
	}
}

func TestMonitor_AutoRecreateSkipsDeletedNodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"pending deletion", errors.DeletionPending(1)},
		{"destroyed", errors.NodeNotFound(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := system.NewMockFS()
			logger := audit.NewLogger("/audit", fs)
			f := newFakeNodes(1)
			f.status[1] = health.StatusMissing
			f.recreateErr = tt.err

			New(time.Second, f, WithAutoRecreate(true), WithAuditLogger(logger)).CheckAll(context.Background())

			events, _ := logger.Events(1)
			for _, e := range events {
				if e.Type == audit.EventError {
					t.Errorf("unexpected error event %+v", e)
				}
			}
		})
	}
}

func TestMonitor_RunCancellation(t *testing.T) {
	m := New(100*time.Millisecond, newFakeNodes(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
