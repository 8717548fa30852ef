package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/app"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/neighborhood"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/runtime"
)

// Environment switches for integration runs.
const (
	EnvEnable = "RUCHE_INTEGRATION_TESTS"
	EnvImage  = "RUCHE_INTEGRATION_IMAGE"

	DefaultImage = "ethersphere/bee:2.3.2"
)

// TestHarness provides utilities for integration testing with real containers.
type TestHarness struct {
	t       *testing.T
	tempDir string
	cfg     *config.Config
	app     *app.App
	nodes   []int // Track provisioned nodes for cleanup
}

// NewHarness creates a new test harness.
// It will skip the test if RUCHE_INTEGRATION_TESTS is not set.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	if os.Getenv(EnvEnable) == "" {
		t.Skipf("integration tests disabled (set %s=1 to enable)", EnvEnable)
	}

	rtType, err := runtime.Detect()
	if err != nil {
		t.Skipf("no container runtime available: %v", err)
	}

	tempDir := t.TempDir()
	cfg := HarnessConfig(tempDir)
	cfg.Runtime.Type = string(rtType)

	if err := os.WriteFile(cfg.Bee.PasswordPath, []byte(cfg.Bee.Password), 0600); err != nil {
		t.Fatalf("Failed to write password file: %v", err)
	}

	a, err := app.New(
		app.WithConfig(cfg),
		app.WithLookup(&neighborhood.Static{Values: []string{"0000"}}),
	)
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}

	h := &TestHarness{
		t:       t,
		tempDir: tempDir,
		cfg:     cfg,
		app:     a,
	}

	t.Cleanup(h.Cleanup)

	return h
}

// HarnessConfig returns a configuration rooted at dir. Ports use the 27xx
// and 28xx ranges to stay clear of a production fleet on the same host.
func HarnessConfig(dir string) *config.Config {
	image := os.Getenv(EnvImage)
	if image == "" {
		image = DefaultImage
	}

	cfg := &config.Config{
		Bee: config.BeeConfig{
			Image:        image,
			PasswordPath: filepath.Join(dir, "password"),
			Password:     "integration",
			WelcomeMsg:   "ruche integration test",
		},
		Network: config.NetworkConfig{
			NATAddr: "127.0.0.1",
			APIPort: "27xx",
			P2PPort: "28xx",
		},
		Chains: config.ChainsConfig{
			EthRPC: "http://127.0.0.1:8545",
			GnoRPC: "http://127.0.0.1:8546",
		},
		Storage: config.StorageConfig{
			RootPath:        filepath.Join(dir, "nodes"),
			ParentDirFormat: "swarm_data_xx",
		},
		Registry: config.RegistryConfig{
			Backend: config.BackendSQLite,
			Path:    filepath.Join(dir, "ruche.db"),
		},
		Runtime: config.RuntimeConfig{PullImage: true},
		Audit:   config.AuditConfig{Dir: filepath.Join(dir, "audit")},
	}
	cfg.ApplyDefaults()
	return cfg
}

// App returns the application under test.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Config returns the harness configuration.
func (h *TestHarness) Config() *config.Config {
	return h.cfg
}

// Provision creates a node and tracks it for cleanup.
func (h *TestHarness) Provision() *node.Info {
	h.t.Helper()

	info, err := h.app.Nodes.Provision(context.Background())
	if err != nil {
		h.t.Fatalf("Provision failed: %v", err)
	}
	h.nodes = append(h.nodes, info.ID)
	return info
}

// WaitForStatus polls the runtime until node id's container reaches want.
func (h *TestHarness) WaitForStatus(id int, want runtime.ContainerStatus, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		info, err := h.app.Runtime.Status(ctx, node.ContainerName(id))
		if err == nil && info.Status == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not %s after %v", node.ContainerName(id), want, timeout)
		case <-ticker.C:
		}
	}
}

// Cleanup removes every tracked container and closes the registry.
func (h *TestHarness) Cleanup() {
	ctx := context.Background()

	for _, id := range h.nodes {
		if err := h.app.Runtime.Remove(ctx, node.ContainerName(id)); err != nil {
			h.t.Logf("Warning: failed to remove %s: %v", node.ContainerName(id), err)
		}
	}

	if err := h.app.Close(); err != nil {
		h.t.Logf("Warning: failed to close registry: %v", err)
	}
}
