package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"github.com/ruche-hive/ruche/internal/node"
)

// Consul stores each record as a JSON document in Consul KV under
// <prefix><id>/<created-at-nanos>, so repeated adds for one id do not
// overwrite each other.
type Consul struct {
	mu     sync.RWMutex
	kv     *consulapi.KV
	prefix string
}

// NewConsul creates a Consul KV registry. An empty addr uses the client's
// defaults (CONSUL_HTTP_ADDR or 127.0.0.1:8500).
func NewConsul(addr, prefix string) (*Consul, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return &Consul{kv: cli.KV(), prefix: prefix}, nil
}

func (c *Consul) nodePrefix(id int) string {
	return c.prefix + node.FormatID(id) + "/"
}

func (c *Consul) Add(ctx context.Context, rec node.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	stamp := rec.CreatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	key := c.nodePrefix(rec.ID) + strconv.FormatInt(stamp.UnixNano(), 10)
	opts := (&consulapi.WriteOptions{}).WithContext(ctx)
	if _, err := c.kv.Put(&consulapi.KVPair{Key: key, Value: b}, opts); err != nil {
		return fmt.Errorf("failed to put node %d: %w", rec.ID, err)
	}
	return nil
}

func (c *Consul) Get(ctx context.Context, id int) (node.Record, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.list(ctx, c.nodePrefix(id))
	if err != nil {
		return node.Record{}, false, fmt.Errorf("failed to read node %d: %w", id, err)
	}
	if len(records) == 0 {
		return node.Record{}, false, nil
	}
	return records[0], true, nil
}

func (c *Consul) List(ctx context.Context) ([]node.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.list(ctx, c.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	sortByID(records)
	return records, nil
}

// list decodes every document under prefix in key order. Keys that do not
// decode are skipped.
func (c *Consul) list(ctx context.Context, prefix string) ([]node.Record, error) {
	opts := (&consulapi.QueryOptions{}).WithContext(ctx)
	pairs, _, err := c.kv.List(prefix, opts)
	if err != nil {
		return nil, err
	}
	var out []node.Record
	for _, p := range pairs {
		if strings.HasSuffix(p.Key, "/") {
			continue
		}
		var rec node.Record
		if err := json.Unmarshal(p.Value, &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Consul) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.list(ctx, c.prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return len(records), nil
}

func (c *Consul) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := (&consulapi.WriteOptions{}).WithContext(ctx)
	if _, err := c.kv.DeleteTree(c.nodePrefix(id), opts); err != nil {
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	return nil
}

func (c *Consul) Close() error {
	return nil
}

var _ Registry = (*Consul)(nil)
