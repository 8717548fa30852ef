package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/storage"
)

// RequestDeletion opens a deletion ticket for node id. The deletion must be
// confirmed within deletion.Window.
func (o *Orchestrator) RequestDeletion(ctx context.Context, id int) (time.Time, error) {
	if _, err := o.lookupRecord(ctx, id); err != nil {
		return time.Time{}, err
	}

	at := o.guard.Request(id)
	o.record(audit.EventDeleteRequest, id, "")
	logging.Node(id, node.ContainerName(id)).Info("deletion requested")
	return at, nil
}

// ConfirmDeletion destroys node id if a deletion was requested within the
// window. The ticket survives a failed destroy so the caller can retry.
func (o *Orchestrator) ConfirmDeletion(ctx context.Context, id int) error {
	unlock := o.lockNode(id)
	defer unlock()

	rec, err := o.lookupRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := o.guard.Confirm(id); err != nil {
		return err
	}

	if err := o.destroy(ctx, rec); err != nil {
		o.record(audit.EventError, id, "destroy: "+err.Error())
		return err
	}

	o.guard.Clear(id)
	o.record(audit.EventDestroy, id, "")
	logging.Node(id, rec.Name()).Info("node destroyed")
	return nil
}

// destroy removes the container, the node directory and the record, in
// that order.
func (o *Orchestrator) destroy(ctx context.Context, rec node.Record) error {
	name := rec.Name()

	if err := o.rt.Remove(ctx, name); err != nil {
		return upstream(errors.OriginRuntime, fmt.Sprintf("failed to remove container %s", name), err)
	}

	dir, err := o.cfg.Layout().NodePath(rec.ID)
	if err != nil {
		return err
	}
	if err := storage.RemoveNodeDir(o.fs, dir); err != nil {
		return err
	}

	if err := o.reg.Delete(ctx, rec.ID); err != nil {
		return upstream(errors.OriginRegistry, fmt.Sprintf("failed to delete node %d", rec.ID), err)
	}

	return nil
}
