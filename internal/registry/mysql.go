package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ruche-hive/ruche/internal/node"
)

// nodeRow is the MySQL row for a node record. RowID is a surrogate key so
// the table, like every backend, accepts duplicate node ids.
type nodeRow struct {
	RowID           uint      `gorm:"primaryKey;autoIncrement"`
	NodeID          int       `gorm:"index;not null"`
	Neighborhood    string    `gorm:"size:64;not null"`
	FullNode        bool      `gorm:"not null"`
	SwapEnable      bool      `gorm:"not null"`
	ReserveDoubling bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (nodeRow) TableName() string { return "nodes" }

func (r nodeRow) record() node.Record {
	return node.Record{
		ID:              r.NodeID,
		Neighborhood:    r.Neighborhood,
		FullNode:        r.FullNode,
		SwapEnable:      r.SwapEnable,
		ReserveDoubling: r.ReserveDoubling,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

func rowFromRecord(rec node.Record) nodeRow {
	return nodeRow{
		NodeID:          rec.ID,
		Neighborhood:    rec.Neighborhood,
		FullNode:        rec.FullNode,
		SwapEnable:      rec.SwapEnable,
		ReserveDoubling: rec.ReserveDoubling,
		CreatedAt:       rec.CreatedAt,
	}
}

// MySQL is a Registry backed by a MySQL table through GORM.
type MySQL struct {
	mu sync.RWMutex
	db *gorm.DB
}

// OpenMySQL connects to dsn and migrates the nodes table.
func OpenMySQL(dsn string) (*MySQL, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	return newMySQL(db)
}

func newMySQL(db *gorm.DB) (*MySQL, error) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(10)
	}
	if err := db.AutoMigrate(&nodeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate nodes table: %w", err)
	}
	return &MySQL{db: db}, nil
}

func (m *MySQL) Add(ctx context.Context, rec node.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := rowFromRecord(rec)
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert node %d: %w", rec.ID, err)
	}
	return nil
}

func (m *MySQL) Get(ctx context.Context, id int) (node.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var row nodeRow
	err := m.db.WithContext(ctx).Where("node_id = ?", id).Order("row_id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return node.Record{}, false, nil
	}
	if err != nil {
		return node.Record{}, false, fmt.Errorf("failed to read node %d: %w", id, err)
	}
	return row.record(), true, nil
}

func (m *MySQL) List(ctx context.Context) ([]node.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []nodeRow
	if err := m.db.WithContext(ctx).Order("node_id").Order("row_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	out := make([]node.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (m *MySQL) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	if err := m.db.WithContext(ctx).Model(&nodeRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return int(n), nil
}

func (m *MySQL) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.db.WithContext(ctx).Where("node_id = ?", id).Delete(&nodeRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	return nil
}

func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Registry = (*MySQL)(nil)
