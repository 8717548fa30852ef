// Package testutil provides test utilities for packages that drive the
// whole node lifecycle.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/app"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/neighborhood"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/registry"
	"github.com/ruche-hive/ruche/internal/runtime"
	"github.com/ruche-hive/ruche/internal/system"
)

// Epoch is the initial time of every TestEnv clock.
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Prober answers bee API health probes without a network. Err, when set,
// makes every probe fail.
type Prober struct {
	mu  sync.Mutex
	Err error
}

func (p *Prober) Probe(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Err
}

// SetErr changes the probe outcome.
func (p *Prober) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Err = err
}

// TestEnv holds the test environment
type TestEnv struct {
	T        *testing.T
	Config   *config.Config
	Registry *registry.Memory
	Runtime  *runtime.MockRuntime
	FS       *system.MockFS
	Lookup   *neighborhood.Static
	Prober   *Prober
	Clock    *Clock
	App      *app.App
}

// DefaultConfig returns a valid configuration for tests. Node directories
// live under /media/ruche on the mock filesystem.
func DefaultConfig() *config.Config {
	cfg := &config.Config{
		Bee: config.BeeConfig{
			Image:        "ethersphere/bee:2.3.2",
			PasswordPath: "/etc/ruche/password",
			Password:     "test-password",
			FullNode:     true,
		},
		Network: config.NetworkConfig{
			NATAddr: "203.0.113.7",
			APIPort: "17xx",
			P2PPort: "18xx",
		},
		Storage: config.StorageConfig{
			RootPath:        "/media/ruche",
			ParentDirFormat: "swarm_data_xx",
		},
		Registry: config.RegistryConfig{Backend: config.BackendMemory},
		Runtime:  config.RuntimeConfig{Type: "docker", User: "1000:1000"},
		Audit:    config.AuditConfig{Dir: "/var/lib/ruche/audit"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// NewTestEnv creates a new test environment with a mock runtime, an
// in-memory registry and a mock filesystem.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, DefaultConfig())
}

// NewTestEnvWithConfig is NewTestEnv with a caller-supplied configuration.
func NewTestEnvWithConfig(t *testing.T, cfg *config.Config) *TestEnv {
	t.Helper()

	env := &TestEnv{
		T:        t,
		Config:   cfg,
		Registry: registry.NewMemory(),
		Runtime:  runtime.NewMockRuntime(),
		FS:       system.NewMockFS(),
		Lookup:   &neighborhood.Static{Values: []string{"0110"}},
		Prober:   &Prober{},
		Clock:    &Clock{t: Epoch},
	}

	a, err := app.New(
		app.WithConfig(cfg),
		app.WithRegistry(env.Registry),
		app.WithRuntime(env.Runtime),
		app.WithFileSystem(env.FS),
		app.WithLookup(env.Lookup),
		app.WithProber(env.Prober),
		app.WithClock(env.Clock.Now),
	)
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}
	env.App = a
	t.Cleanup(func() { a.Close() })

	return env
}

// AddNode registers a node as if it had been provisioned: record, running
// container and data directory.
func (e *TestEnv) AddNode(id int) node.Record {
	e.T.Helper()

	rec := node.Record{
		ID:           id,
		Neighborhood: "0110",
		FullNode:     e.Config.Bee.FullNode,
		CreatedAt:    e.Clock.Now(),
	}
	if err := e.Registry.Add(context.Background(), rec); err != nil {
		e.T.Fatalf("Failed to add node %d: %v", id, err)
	}
	e.Runtime.AddContainer(rec.Name(), runtime.StatusRunning)

	dir, err := e.Config.Layout().NodePath(id)
	if err != nil {
		e.T.Fatalf("Failed to resolve node %d directory: %v", id, err)
	}
	e.FS.AddDir(dir)

	return rec
}

// NodeExists reports whether a record for id is registered.
func (e *TestEnv) NodeExists(id int) bool {
	_, ok, _ := e.Registry.Get(context.Background(), id)
	return ok
}

// NodeDir returns the data directory of node id.
func (e *TestEnv) NodeDir(id int) string {
	e.T.Helper()
	dir, err := e.Config.Layout().NodePath(id)
	if err != nil {
		e.T.Fatalf("Failed to resolve node %d directory: %v", id, err)
	}
	return dir
}
