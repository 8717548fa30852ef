package app

import (
	"fmt"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/deletion"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/lifecycle"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/neighborhood"
	"github.com/ruche-hive/ruche/internal/registry"
	"github.com/ruche-hive/ruche/internal/runtime"
	"github.com/ruche-hive/ruche/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// Registry stores node records
	Registry registry.Registry

	// Runtime is the container runtime
	Runtime runtime.Runtime

	// FS is the filesystem node directories live on
	FS system.FileSystem

	// Lookup suggests target neighborhoods
	Lookup neighborhood.Lookup

	// Prober checks node bee APIs
	Prober health.Prober

	// Guard holds pending deletion tickets
	Guard *deletion.Guard

	// Audit records node lifecycle events
	Audit *audit.Logger

	// Nodes drives the node lifecycle
	Nodes *lifecycle.Orchestrator

	clock func() time.Time
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets the configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithRegistry sets a custom registry
func WithRegistry(r registry.Registry) Option {
	return func(a *App) {
		a.Registry = r
	}
}

// WithRuntime sets a custom runtime
func WithRuntime(r runtime.Runtime) Option {
	return func(a *App) {
		a.Runtime = r
	}
}

// WithFileSystem sets a custom filesystem
func WithFileSystem(fsys system.FileSystem) Option {
	return func(a *App) {
		a.FS = fsys
	}
}

// WithLookup sets a custom neighborhood lookup
func WithLookup(l neighborhood.Lookup) Option {
	return func(a *App) {
		a.Lookup = l
	}
}

// WithProber sets a custom bee API prober
func WithProber(p health.Prober) Option {
	return func(a *App) {
		a.Prober = p
	}
}

// WithClock sets the time source for records and deletion tickets
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.clock = now
	}
}

// New creates a new App with the given options. A configuration is
// required; every other dependency defaults to the one the configuration
// describes.
func New(opts ...Option) (*App, error) {
	a := &App{clock: time.Now}

	for _, opt := range opts {
		opt(a)
	}

	if a.Config == nil {
		return nil, fmt.Errorf("app: configuration is required")
	}
	cfg := a.Config

	if a.FS == nil {
		a.FS = system.DefaultFS()
	}

	if a.Registry == nil {
		reg, err := registry.Open(cfg.Registry)
		if err != nil {
			return nil, err
		}
		a.Registry = reg
	}

	if a.Runtime == nil {
		rt, err := runtime.New(runtime.Config{Type: runtime.RuntimeType(cfg.Runtime.Type)})
		if err != nil {
			a.Registry.Close()
			return nil, fmt.Errorf("failed to initialize runtime: %w", err)
		}
		a.Runtime = rt
	}
	logging.Debug("using container runtime", "runtime", a.Runtime.Name())

	if a.Lookup == nil {
		url := neighborhood.ResolveURL(cfg.Neighborhood.APIURL)
		logging.Debug("using neighborhood lookup", "url", url)
		a.Lookup = neighborhood.NewHTTPLookup(url)
	}

	if a.Prober == nil {
		a.Prober = health.NewHTTPProber()
	}

	a.Guard = deletion.NewGuardWithClock(a.clock)
	a.Audit = audit.NewLogger(cfg.Audit.Dir, a.FS)

	a.Nodes = lifecycle.New(cfg, a.Registry, a.Runtime,
		lifecycle.WithFileSystem(a.FS),
		lifecycle.WithLookup(a.Lookup),
		lifecycle.WithProber(a.Prober),
		lifecycle.WithGuard(a.Guard),
		lifecycle.WithAudit(a.Audit),
		lifecycle.WithClock(a.clock),
	)

	return a, nil
}

// Close releases the registry.
func (a *App) Close() error {
	if a.Registry == nil {
		return nil
	}
	return a.Registry.Close()
}
