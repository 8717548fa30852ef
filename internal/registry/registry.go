// Package registry persists node records.
//
// A Registry is keyed by node id but does not deduplicate: preventing two
// records with the same id is the caller's job, done by allocating ids
// inside a single exclusive section. Deleting an unknown id is a no-op.
//
// Every backend guards its store with one sync.RWMutex. Reads share the
// lock and writes take it exclusively.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

// Registry is the persistent store of node records.
type Registry interface {
	// Add stores a record.
	Add(ctx context.Context, rec node.Record) error

	// Get returns the record for id. The bool is false when none exists.
	Get(ctx context.Context, id int) (node.Record, bool, error)

	// List returns all records sorted ascending by id.
	List(ctx context.Context) ([]node.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Delete removes the records for id.
	Delete(ctx context.Context, id int) error

	// Close releases the underlying store.
	Close() error
}

// Open creates the backend selected by cfg.
func Open(cfg config.RegistryConfig) (Registry, error) {
	logging.Debug("opening registry", "backend", cfg.Backend)

	switch cfg.Backend {
	case config.BackendSQLite, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultRegistryPath
		}
		return OpenSQLite(path)
	case config.BackendMySQL:
		return OpenMySQL(cfg.DSN)
	case config.BackendConsul:
		return NewConsul(cfg.ConsulAddr, cfg.ConsulPrefix)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown registry backend: %s", cfg.Backend)
	}
}

// sortByID orders records ascending by id. Records sharing an id keep
// their insertion order.
func sortByID(records []node.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
