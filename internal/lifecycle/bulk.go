package lifecycle

import (
	"context"
	"fmt"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

// BulkResult is the outcome of one container in a bulk operation.
type BulkResult struct {
	Name string
	Err  error
}

// Failed reports whether any result carries an error.
func Failed(results []BulkResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Start starts the container of node id.
func (o *Orchestrator) Start(ctx context.Context, id int) error {
	if _, err := o.lookupRecord(ctx, id); err != nil {
		return err
	}
	return o.startName(ctx, node.ContainerName(id))
}

// Stop stops the container of node id.
func (o *Orchestrator) Stop(ctx context.Context, id int) error {
	if _, err := o.lookupRecord(ctx, id); err != nil {
		return err
	}
	return o.stopName(ctx, node.ContainerName(id))
}

func (o *Orchestrator) startName(ctx context.Context, name string) error {
	if err := o.rt.Start(ctx, name); err != nil {
		o.recordName(audit.EventError, name, "start: "+err.Error())
		return upstream(errors.OriginRuntime, fmt.Sprintf("failed to start %s", name), err)
	}
	o.recordName(audit.EventStart, name, "")
	logging.Debug("container started", "container", name)
	return nil
}

func (o *Orchestrator) stopName(ctx context.Context, name string) error {
	if err := o.rt.Stop(ctx, name); err != nil {
		o.recordName(audit.EventError, name, "stop: "+err.Error())
		return upstream(errors.OriginRuntime, fmt.Sprintf("failed to stop %s", name), err)
	}
	o.recordName(audit.EventStop, name, "")
	logging.Debug("container stopped", "container", name)
	return nil
}

// recordName logs an audit event for a container name that belongs to a
// node. Other names are ignored.
func (o *Orchestrator) recordName(eventType audit.EventType, name, details string) {
	if id, ok := node.ParseName(name); ok {
		o.record(eventType, id, details)
	}
}

// StartNames starts each named container. A failure on one name does not
// stop the others.
func (o *Orchestrator) StartNames(ctx context.Context, names []string) []BulkResult {
	results := make([]BulkResult, 0, len(names))
	for _, name := range names {
		results = append(results, BulkResult{Name: name, Err: o.startName(ctx, name)})
	}
	return results
}

// StopNames stops each named container. A failure on one name does not
// stop the others.
func (o *Orchestrator) StopNames(ctx context.Context, names []string) []BulkResult {
	results := make([]BulkResult, 0, len(names))
	for _, name := range names {
		results = append(results, BulkResult{Name: name, Err: o.stopName(ctx, name)})
	}
	return results
}

func (o *Orchestrator) names(ctx context.Context) ([]string, error) {
	records, err := o.reg.List(ctx)
	if err != nil {
		return nil, upstream(errors.OriginRegistry, "failed to list nodes", err)
	}
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name())
	}
	return names, nil
}

// StartAll starts every registered node.
func (o *Orchestrator) StartAll(ctx context.Context) ([]BulkResult, error) {
	names, err := o.names(ctx)
	if err != nil {
		return nil, err
	}
	return o.StartNames(ctx, names), nil
}

// StopAll stops every registered node.
func (o *Orchestrator) StopAll(ctx context.Context) ([]BulkResult, error) {
	names, err := o.names(ctx)
	if err != nil {
		return nil, err
	}
	return o.StopNames(ctx, names), nil
}

// Recreate replaces the container of node id with a fresh one built from
// its record and the current configuration. Stop and remove are best
// effort; create and start are not. A node with an open deletion ticket is
// refused with DeletionPending.
func (o *Orchestrator) Recreate(ctx context.Context, id int) error {
	unlock := o.lockNode(id)
	defer unlock()

	rec, err := o.lookupRecord(ctx, id)
	if err != nil {
		return err
	}
	if o.guard.Requested(id) {
		return errors.DeletionPending(id)
	}
	return o.recreate(ctx, rec)
}

func (o *Orchestrator) recreate(ctx context.Context, rec node.Record) error {
	log := logging.Node(rec.ID, rec.Name())

	info, err := o.info(rec)
	if err != nil {
		return err
	}
	opts, err := o.createOptions(rec, info)
	if err != nil {
		return err
	}

	if err := o.rt.Stop(ctx, info.Name); err != nil {
		log.Debug("stop before recreate failed", "error", err)
	}
	if err := o.rt.Remove(ctx, info.Name); err != nil {
		log.Debug("remove before recreate failed", "error", err)
	}

	if err := o.rt.Create(ctx, opts); err != nil {
		o.record(audit.EventError, rec.ID, "recreate: "+err.Error())
		return upstream(errors.OriginRuntime, fmt.Sprintf("failed to recreate %s", info.Name), err)
	}

	o.record(audit.EventRecreate, rec.ID, "")
	log.Info("container recreated")
	return nil
}

// RecreateAll recreates every registered node. Nodes pending deletion, or
// destroyed while the batch runs, are skipped.
func (o *Orchestrator) RecreateAll(ctx context.Context) ([]BulkResult, error) {
	records, err := o.reg.List(ctx)
	if err != nil {
		return nil, upstream(errors.OriginRegistry, "failed to list nodes", err)
	}

	results := make([]BulkResult, 0, len(records))
	for _, rec := range records {
		err := o.Recreate(ctx, rec.ID)
		if errors.IsKind(err, errors.KindDeletionPending) || errors.IsKind(err, errors.KindNotFound) {
			logging.Debug("skipping recreate", "node", rec.Name(), "reason", err)
			continue
		}
		results = append(results, BulkResult{Name: rec.Name(), Err: err})
	}
	return results, nil
}
