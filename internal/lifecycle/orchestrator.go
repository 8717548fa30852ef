package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/deletion"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/neighborhood"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/port"
	"github.com/ruche-hive/ruche/internal/registry"
	"github.com/ruche-hive/ruche/internal/runtime"
	"github.com/ruche-hive/ruche/internal/storage"
	"github.com/ruche-hive/ruche/internal/system"
)

// Orchestrator drives the node lifecycle.
type Orchestrator struct {
	cfg    *config.Config
	reg    registry.Registry
	rt     runtime.Runtime
	fs     system.FileSystem
	lookup neighborhood.Lookup
	guard  *deletion.Guard
	audit  *audit.Logger
	prober health.Prober
	now    func() time.Time

	// provisionMu serializes read ids -> allocate -> persist.
	provisionMu sync.Mutex

	// nodeMu holds one mutex per node id. Destroy and recreate of the same
	// node never overlap.
	locksMu sync.Mutex
	nodeMu  map[int]*sync.Mutex
}

// Option is a function that configures the Orchestrator
type Option func(*Orchestrator)

// WithFileSystem sets the filesystem node directories are created on
func WithFileSystem(fsys system.FileSystem) Option {
	return func(o *Orchestrator) {
		o.fs = fsys
	}
}

// WithLookup sets the neighborhood lookup
func WithLookup(l neighborhood.Lookup) Option {
	return func(o *Orchestrator) {
		o.lookup = l
	}
}

// WithGuard sets the deletion guard
func WithGuard(g *deletion.Guard) Option {
	return func(o *Orchestrator) {
		o.guard = g
	}
}

// WithAudit sets the audit logger
func WithAudit(a *audit.Logger) Option {
	return func(o *Orchestrator) {
		o.audit = a
	}
}

// WithProber sets the bee API prober used by Health
func WithProber(p health.Prober) Option {
	return func(o *Orchestrator) {
		o.prober = p
	}
}

// WithClock sets the time source used for record timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator. Collaborators not given as options default
// to the real filesystem, the HTTP neighborhood lookup, a fresh deletion
// guard and an audit logger under cfg.Audit.Dir.
func New(cfg *config.Config, reg registry.Registry, rt runtime.Runtime, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		reg:    reg,
		rt:     rt,
		now:    time.Now,
		nodeMu: make(map[int]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.fs == nil {
		o.fs = system.DefaultFS()
	}
	if o.lookup == nil {
		o.lookup = neighborhood.NewHTTPLookup(neighborhood.ResolveURL(cfg.Neighborhood.APIURL))
	}
	if o.guard == nil {
		o.guard = deletion.NewGuard()
	}
	if o.audit == nil {
		o.audit = audit.NewLogger(cfg.Audit.Dir, o.fs)
	}
	if o.prober == nil {
		o.prober = health.NewHTTPProber()
	}

	return o
}

// lockNode locks node id and returns the matching unlock.
func (o *Orchestrator) lockNode(id int) func() {
	o.locksMu.Lock()
	mu, ok := o.nodeMu[id]
	if !ok {
		mu = &sync.Mutex{}
		o.nodeMu[id] = mu
	}
	o.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Guard returns the deletion guard in use.
func (o *Orchestrator) Guard() *deletion.Guard {
	return o.guard
}

// Audit returns the audit logger in use.
func (o *Orchestrator) Audit() *audit.Logger {
	return o.audit
}

// upstream tags err with origin unless it already carries a ruche error kind.
func upstream(origin errors.Origin, msg string, err error) error {
	var rucheErr *errors.RucheError
	if errors.As(err, &rucheErr) {
		return err
	}
	return errors.Upstream(origin, msg, err)
}

func (o *Orchestrator) record(eventType audit.EventType, id int, details string) {
	if err := o.audit.LogEvent(eventType, id, details); err != nil {
		logging.Warn("failed to write audit event", "node_id", id, "type", eventType, "error", err)
	}
}

// Provision creates a new node: it allocates the lowest free id, asks for a
// target neighborhood, creates the node directory, creates and starts the
// container, then persists the record.
func (o *Orchestrator) Provision(ctx context.Context) (*node.Info, error) {
	o.provisionMu.Lock()
	defer o.provisionMu.Unlock()

	count, err := o.reg.Count(ctx)
	if err != nil {
		return nil, upstream(errors.OriginRegistry, "failed to count nodes", err)
	}
	if count >= node.Capacity {
		return nil, errors.CapacityExceeded(count)
	}

	records, err := o.reg.List(ctx)
	if err != nil {
		return nil, upstream(errors.OriginRegistry, "failed to list nodes", err)
	}

	id, err := port.Allocate(node.IDs(records))
	if err != nil {
		return nil, err
	}

	log := logging.Node(id, node.ContainerName(id))
	log.Debug("allocated node id")

	hood, err := o.lookup.Suggest(ctx)
	if err != nil {
		return nil, upstream(errors.OriginNeighborhood, "failed to get neighborhood", err)
	}

	rec := node.Record{
		ID:              id,
		Neighborhood:    hood,
		FullNode:        o.cfg.Bee.FullNode,
		SwapEnable:      o.cfg.Bee.SwapEnable,
		ReserveDoubling: o.cfg.Bee.ReserveDoubling,
		CreatedAt:       o.now().UTC(),
	}

	info, err := o.info(rec)
	if err != nil {
		return nil, err
	}
	opts, err := o.createOptions(rec, info)
	if err != nil {
		return nil, err
	}

	if err := storage.CreateNodeDir(o.fs, info.DataDir); err != nil {
		return nil, err
	}
	log.Debug("node directory created", "path", info.DataDir)

	if err := o.rt.Create(ctx, opts); err != nil {
		o.record(audit.EventError, id, "create container: "+err.Error())
		return nil, upstream(errors.OriginRuntime, fmt.Sprintf("failed to create container %s", info.Name), err)
	}
	log.Debug("container created and started")

	if err := o.reg.Add(ctx, rec); err != nil {
		o.record(audit.EventError, id, "persist record: "+err.Error())
		return nil, upstream(errors.OriginRegistry, fmt.Sprintf("failed to save node %d", id), err)
	}

	o.record(audit.EventCreate, id, "neighborhood="+hood)
	log.Info("node provisioned", "neighborhood", hood, "api_port", info.APIPort, "p2p_port", info.P2PPort)

	info.Status = string(runtime.StatusRunning)
	return info, nil
}

// lookupRecord returns the record for id or NotFound.
func (o *Orchestrator) lookupRecord(ctx context.Context, id int) (node.Record, error) {
	rec, ok, err := o.reg.Get(ctx, id)
	if err != nil {
		return node.Record{}, upstream(errors.OriginRegistry, fmt.Sprintf("failed to get node %d", id), err)
	}
	if !ok {
		return node.Record{}, errors.NodeNotFound(id)
	}
	return rec, nil
}

// Get returns the derived view of a node, including its container status.
func (o *Orchestrator) Get(ctx context.Context, id int) (*node.Info, error) {
	rec, err := o.lookupRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	info, err := o.info(rec)
	if err != nil {
		return nil, err
	}

	status, err := o.rt.Status(ctx, info.Name)
	if err != nil {
		logging.Debug("failed to get container status", "container", info.Name, "error", err)
		info.Status = string(runtime.StatusUnknown)
	} else {
		info.Status = string(status.Status)
	}

	return info, nil
}

// List returns every registered node sorted by id.
func (o *Orchestrator) List(ctx context.Context) ([]*node.Info, error) {
	records, err := o.reg.List(ctx)
	if err != nil {
		return nil, upstream(errors.OriginRegistry, "failed to list nodes", err)
	}

	statuses := make(map[string]runtime.ContainerStatus)
	containers, listErr := o.rt.List(ctx, node.ContainerPrefix)
	if listErr != nil {
		logging.Debug("failed to list containers", "error", listErr)
	}
	for _, c := range containers {
		statuses[c.Name] = c.Status
	}

	infos := make([]*node.Info, 0, len(records))
	for _, rec := range records {
		info, err := o.info(rec)
		if err != nil {
			return nil, err
		}
		if listErr != nil {
			info.Status = string(runtime.StatusUnknown)
		} else if s, ok := statuses[info.Name]; ok {
			info.Status = string(s)
		} else {
			info.Status = string(runtime.StatusNotFound)
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Count returns the number of registered nodes.
func (o *Orchestrator) Count(ctx context.Context) (int, error) {
	n, err := o.reg.Count(ctx)
	if err != nil {
		return 0, upstream(errors.OriginRegistry, "failed to count nodes", err)
	}
	return n, nil
}

// Status returns the runtime state of a node's container.
func (o *Orchestrator) Status(ctx context.Context, id int) (*runtime.ContainerInfo, error) {
	if _, err := o.lookupRecord(ctx, id); err != nil {
		return nil, err
	}
	info, err := o.rt.Status(ctx, node.ContainerName(id))
	if err != nil {
		return nil, upstream(errors.OriginRuntime, fmt.Sprintf("failed to inspect %s", node.ContainerName(id)), err)
	}
	return info, nil
}

// Health checks a node's container and probes its bee API.
func (o *Orchestrator) Health(ctx context.Context, id int) (*health.CheckResult, error) {
	rec, err := o.lookupRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := o.info(rec)
	if err != nil {
		return nil, err
	}
	return health.Check(ctx, o.rt, o.prober, info), nil
}

// Logs returns the combined stdout and stderr of a node's container.
func (o *Orchestrator) Logs(ctx context.Context, id int) ([]string, error) {
	if _, err := o.lookupRecord(ctx, id); err != nil {
		return nil, err
	}
	lines, err := o.rt.Logs(ctx, node.ContainerName(id))
	if err != nil {
		return nil, upstream(errors.OriginRuntime, fmt.Sprintf("failed to get logs of %s", node.ContainerName(id)), err)
	}
	return lines, nil
}

// Events returns the audit trail of a node. The node need not exist any
// more; a destroyed node's history stays readable.
func (o *Orchestrator) Events(ctx context.Context, id int) ([]audit.Event, error) {
	if !node.ValidID(id) {
		return nil, errors.NodeNotFound(id)
	}
	events, err := o.audit.Events(id)
	if err != nil {
		return nil, upstream(errors.OriginFilesystem, fmt.Sprintf("failed to read events of node %d", id), err)
	}
	return events, nil
}
