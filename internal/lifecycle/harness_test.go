package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/deletion"
	"github.com/ruche-hive/ruche/internal/neighborhood"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/registry"
	"github.com/ruche-hive/ruche/internal/runtime"
	"github.com/ruche-hive/ruche/internal/system"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

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

// flakyRegistry wraps Memory and fails selected operations.
type flakyRegistry struct {
	*registry.Memory
	mu        sync.Mutex
	addErr    error
	deleteErr error

	// deleteGate, when set, holds the next Delete until it is closed.
	deleteGate    chan struct{}
	deleteEntered chan struct{}
}

func (f *flakyRegistry) Add(ctx context.Context, rec node.Record) error {
	f.mu.Lock()
	err := f.addErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.Add(ctx, rec)
}

func (f *flakyRegistry) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	err := f.deleteErr
	gate, entered := f.deleteGate, f.deleteEntered
	f.deleteGate, f.deleteEntered = nil, nil
	f.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}
	if err != nil {
		return err
	}
	return f.Memory.Delete(ctx, id)
}

// blockDelete makes the next Delete wait. entered is closed once Delete is
// reached; closing release lets it finish.
func (f *flakyRegistry) blockDelete() (entered <-chan struct{}, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteGate = make(chan struct{})
	f.deleteEntered = make(chan struct{})
	return f.deleteEntered, f.deleteGate
}

func (f *flakyRegistry) setDeleteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

var errBoom = errors.New("boom")

type harness struct {
	orch   *Orchestrator
	cfg    *config.Config
	reg    *flakyRegistry
	rt     *runtime.MockRuntime
	fs     *system.MockFS
	lookup *neighborhood.Static
	prober *stubProber
	clock  *fakeClock
}

// stubProber records probed addresses and fails with err when set.
type stubProber struct {
	mu    sync.Mutex
	err   error
	addrs []string
}

func (p *stubProber) Probe(_ context.Context, addr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addrs = append(p.addrs, addr)
	return p.err
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Bee: config.BeeConfig{
			Image:        "ethersphere/bee:2.3.2",
			PasswordPath: "/etc/ruche/password",
			Password:     "s3cret",
			WelcomeMsg:   "hello",
			FullNode:     true,
			SwapEnable:   true,
		},
		Network: config.NetworkConfig{
			NATAddr: "203.0.113.7",
			APIPort: "17xx",
			P2PPort: "18xx",
		},
		Chains: config.ChainsConfig{
			EthRPC: "https://eth.example",
			GnoRPC: "https://gno.example",
		},
		Storage: config.StorageConfig{
			RootPath:          "/media/ruche",
			ParentDirFormat:   "swarm_data_xx",
			ParentDirCapacity: 4,
		},
		Runtime: config.RuntimeConfig{User: "1000:1000"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithConfig(t, testConfig())
}

func newHarnessWithConfig(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	h := &harness{
		cfg:    cfg,
		reg:    &flakyRegistry{Memory: registry.NewMemory()},
		rt:     runtime.NewMockRuntime(),
		fs:     system.NewMockFS(),
		lookup: &neighborhood.Static{Values: []string{"0110"}},
		prober: &stubProber{},
		clock:  &fakeClock{t: testNow},
	}
	h.orch = New(cfg, h.reg, h.rt,
		WithFileSystem(h.fs),
		WithLookup(h.lookup),
		WithGuard(deletion.NewGuardWithClock(h.clock.Now)),
		WithAudit(audit.NewLogger("/var/lib/ruche/audit", h.fs)),
		WithProber(h.prober),
		WithClock(h.clock.Now),
	)
	return h
}

// seed registers records directly, bypassing provisioning.
func (h *harness) seed(t *testing.T, ids ...int) {
	t.Helper()
	for _, id := range ids {
		if err := h.reg.Memory.Add(context.Background(), node.Record{ID: id, Neighborhood: "0000"}); err != nil {
			t.Fatalf("seed %d: %v", id, err)
		}
	}
}
