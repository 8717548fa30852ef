package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ruche-hive/ruche/internal/node"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS nodes(
	id INTEGER NOT NULL,
	neighborhood TEXT NOT NULL,
	full_node INTEGER NOT NULL,
	swap_enable INTEGER NOT NULL,
	reserve_doubling INTEGER NOT NULL,
	created_at INTEGER NOT NULL
); CREATE INDEX IF NOT EXISTS idx_nodes_id ON nodes(id);`

const sqliteColumns = `id, neighborhood, full_node, swap_enable, reserve_doubling, created_at`

// SQLite is the default Registry, stored in a single database file.
type SQLite struct {
	mu sync.RWMutex
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open registry %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping registry %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Add(ctx context.Context, rec node.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes(`+sqliteColumns+`) VALUES(?,?,?,?,?,?)`,
		rec.ID, rec.Neighborhood, rec.FullNode, rec.SwapEnable, rec.ReserveDoubling, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert node %d: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id int) (node.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM nodes WHERE id = ? ORDER BY rowid LIMIT 1`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return node.Record{}, false, nil
	}
	if err != nil {
		return node.Record{}, false, fmt.Errorf("failed to read node %d: %w", id, err)
	}
	return rec, true, nil
}

func (s *SQLite) List(ctx context.Context) ([]node.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM nodes ORDER BY id, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	var out []node.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

func (s *SQLite) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (node.Record, error) {
	var (
		rec     node.Record
		created int64
	)
	if err := sc.Scan(&rec.ID, &rec.Neighborhood, &rec.FullNode, &rec.SwapEnable, &rec.ReserveDoubling, &created); err != nil {
		return node.Record{}, err
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

var _ Registry = (*SQLite)(nil)
