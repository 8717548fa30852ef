package lifecycle

import (
	"context"
	"testing"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/runtime"
)

func TestStartStop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 1)
	h.rt.AddContainer("node_01", runtime.StatusRunning)

	if err := h.orch.Stop(ctx, 1); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	c, _ := h.rt.Status(ctx, "node_01")
	if c.Status != runtime.StatusStopped {
		t.Errorf("Status = %q, want stopped", c.Status)
	}

	if err := h.orch.Start(ctx, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c, _ = h.rt.Status(ctx, "node_01")
	if c.Status != runtime.StatusRunning {
		t.Errorf("Status = %q, want running", c.Status)
	}

	events, _ := h.orch.Events(ctx, 1)
	if len(events) != 2 || events[0].Type != audit.EventStop || events[1].Type != audit.EventStart {
		t.Errorf("events = %+v", events)
	}

	if err := h.orch.Start(ctx, 2); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("Start(2) = %v, want NotFound", err)
	}
}

func TestStartNames_Independent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.rt.AddContainer("node_01", runtime.StatusStopped)
	h.rt.AddContainer("node_03", runtime.StatusStopped)

	results := h.orch.StartNames(ctx, []string{"node_01", "node_02", "node_03"})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("results = %+v, want node_01 and node_03 to succeed", results)
	}
	if results[1].Err == nil || !errors.IsKind(results[1].Err, errors.KindUpstreamFailure) {
		t.Errorf("node_02 result = %v, want UpstreamFailure", results[1].Err)
	}
	if !Failed(results) {
		t.Error("Failed() = false, want true")
	}

	c, _ := h.rt.Status(ctx, "node_03")
	if c.Status != runtime.StatusRunning {
		t.Error("node_03 should be started after node_02 failed")
	}
}

func TestStopAll(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 2, 1)
	h.rt.AddContainer("node_01", runtime.StatusRunning)
	h.rt.AddContainer("node_02", runtime.StatusRunning)
	h.rt.AddContainer("node_50", runtime.StatusRunning)

	results, err := h.orch.StopAll(ctx)
	if err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(results) != 2 || results[0].Name != "node_01" || results[1].Name != "node_02" {
		t.Errorf("results = %+v", results)
	}
	if Failed(results) {
		t.Errorf("results = %+v, want no failures", results)
	}

	c, _ := h.rt.Status(ctx, "node_50")
	if c.Status != runtime.StatusRunning {
		t.Error("unregistered containers must not be touched")
	}
}

func TestStartAll_Empty(t *testing.T) {
	h := newHarness(t)

	results, err := h.orch.StartAll(context.Background())
	if err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(results) != 0 || Failed(results) {
		t.Errorf("results = %+v, want empty", results)
	}
}

func TestRecreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, 4)
	h.rt.AddContainer("node_04", runtime.StatusRunning)

	if err := h.orch.Recreate(ctx, 4); err != nil {
		t.Fatalf("Recreate failed: %v", err)
	}

	if len(h.rt.GetCallsFor("Stop")) != 1 || len(h.rt.GetCallsFor("Remove")) != 1 {
		t.Error("Recreate should stop and remove the old container")
	}
	opts, ok := h.rt.CreatedWith("node_04")
	if !ok || !opts.Start {
		t.Fatalf("container not recreated: %+v", opts)
	}
	if opts.Ports[0].HostPort != "1704" {
		t.Errorf("api port = %q, want 1704", opts.Ports[0].HostPort)
	}
	c, _ := h.rt.Status(ctx, "node_04")
	if c.Status != runtime.StatusRunning {
		t.Errorf("Status = %q, want running", c.Status)
	}
}

func TestRecreate_MissingContainer(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 6)

	// Stop fails on a missing container; it is ignored.
	if err := h.orch.Recreate(context.Background(), 6); err != nil {
		t.Fatalf("Recreate failed: %v", err)
	}
	if _, ok := h.rt.CreatedWith("node_06"); !ok {
		t.Error("container not created")
	}
}

func TestRecreateAll_CreateFailure(t *testing.T) {
	h := newHarness(t)
	h.seed(t, 1, 2)
	h.rt.SetError("Create", errBoom)

	results, err := h.orch.RecreateAll(context.Background())
	if err != nil {
		t.Fatalf("RecreateAll failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if !errors.IsKind(r.Err, errors.KindUpstreamFailure) {
			t.Errorf("%s: err = %v, want UpstreamFailure", r.Name, r.Err)
		}
	}
}
