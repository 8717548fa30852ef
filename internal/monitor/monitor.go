// Package monitor provides background health monitoring for nodes.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

// Nodes is the part of the lifecycle orchestrator the monitor drives.
type Nodes interface {
	List(ctx context.Context) ([]*node.Info, error)
	Health(ctx context.Context, id int) (*health.CheckResult, error)
	Recreate(ctx context.Context, id int) error
}

// Monitor periodically checks the health of all nodes.
type Monitor struct {
	interval     time.Duration
	nodes        Nodes
	autoRecreate bool
	auditLog     *audit.Logger

	mu   sync.Mutex
	last map[int]health.Status
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAutoRecreate enables recreating containers of registered nodes that
// have gone missing. Stopped nodes are left alone.
func WithAutoRecreate(enabled bool) Option {
	return func(m *Monitor) {
		m.autoRecreate = enabled
	}
}

// WithAuditLogger sets the audit logger for recording health transitions.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(m *Monitor) {
		m.auditLog = logger
	}
}

// New creates a new Monitor.
func New(interval time.Duration, nodes Nodes, opts ...Option) *Monitor {
	m := &Monitor{
		interval: interval,
		nodes:    nodes,
		last:     make(map[int]health.Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the monitoring loop. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug("starting health monitor", "interval", m.interval, "autoRecreate", m.autoRecreate)

	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("health monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll checks every registered node once.
func (m *Monitor) CheckAll(ctx context.Context) []*health.CheckResult {
	nodes, err := m.nodes.List(ctx)
	if err != nil {
		logging.Warn("monitor failed to list nodes", "error", err)
		return nil
	}

	var results []*health.CheckResult
	for _, n := range nodes {
		if ctx.Err() != nil {
			break
		}

		result, err := m.nodes.Health(ctx, n.ID)
		if err != nil {
			logging.Warn("health check failed", "node", n.Name, "error", err)
			continue
		}
		results = append(results, result)
		m.observe(n.ID, result)

		if m.autoRecreate && result.Status == health.StatusMissing {
			logging.Info("recreating missing container", "node", n.Name)
			err := m.nodes.Recreate(ctx, n.ID)
			switch {
			case err == nil:
			case errors.IsKind(err, errors.KindDeletionPending), errors.IsKind(err, errors.KindNotFound):
				logging.Debug("auto-recreate skipped", "node", n.Name, "reason", err)
			default:
				logging.Warn("auto-recreate failed", "node", n.Name, "error", err)
				m.logEvent(audit.EventError, n.ID, "auto-recreate failed: "+err.Error())
			}
		}
	}

	return results
}

// observe records a health transition. Unchanged statuses are not logged.
func (m *Monitor) observe(id int, result *health.CheckResult) {
	m.mu.Lock()
	prev, seen := m.last[id]
	m.last[id] = result.Status
	m.mu.Unlock()

	if seen && prev == result.Status {
		return
	}

	if result.Status == health.StatusHealthy {
		logging.Info("node health changed", "node", result.Name, "status", result.Status)
	} else {
		logging.Warn("node health changed", "node", result.Name, "status", result.Status, "error", result.Error)
	}
	m.logEvent(audit.EventHealth, id, string(result.Status))
}

func (m *Monitor) logEvent(eventType audit.EventType, id int, details string) {
	if !m.auditLog.Enabled() {
		return
	}
	if err := m.auditLog.LogEvent(eventType, id, details); err != nil {
		logging.Warn("failed to write audit event", "node_id", id, "type", eventType, "error", err)
	}
}
