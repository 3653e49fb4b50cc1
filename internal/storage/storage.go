// Package storage implements the process-wide table registry (spec.md §5
// "the storage manager (a process-wide registry of tables by name)").
// Registry reads happen under a shared lock and AddTable/DropTable under the
// registry's exclusive lock; Insert/Update/Delete take the table's own
// exclusive lock through Lock.
package storage

import (
	"sync"

	"go.uber.org/zap"

	"chunkdb/internal/chunkerr"
	"chunkdb/internal/table"
)

// Manager is the storage manager: GetTable/AddTable/HasTable over a
// case-sensitive name registry (spec.md §6 "External Interfaces").
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*entry
	log    *zap.SugaredLogger
}

type entry struct {
	mu    sync.RWMutex
	table *table.Table
}

// NewManager returns an empty storage manager that logs to a no-op logger.
func NewManager() *Manager {
	return NewManagerWithLogger(zap.NewNop().Sugar())
}

// NewManagerWithLogger returns an empty storage manager that logs table
// creation/drop through log (spec.md §5/SPEC_FULL.md §2 "library code never
// calls a global logger; callers inject one").
func NewManagerWithLogger(log *zap.SugaredLogger) *Manager {
	return &Manager{tables: make(map[string]*entry), log: log}
}

// AddTable registers name. Duplicate registration is a chunkerr.Schema
// error (spec.md §6).
func (m *Manager) AddTable(name string, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[name]; exists {
		return chunkerr.Newf(chunkerr.Schema, "AddTable", "table %q already exists", name)
	}
	m.tables[name] = &entry{table: t}
	m.log.Infow("table added", "table", name, "columns", t.ColumnCount())
	return nil
}

// HasTable reports whether name is registered.
func (m *Manager) HasTable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[name]
	return ok
}

// GetTable returns the table registered under name, or a chunkerr.Schema
// error if absent.
func (m *Manager) GetTable(name string) (*table.Table, error) {
	m.mu.RLock()
	e, ok := m.tables[name]
	m.mu.RUnlock()
	if !ok {
		return nil, chunkerr.Newf(chunkerr.Schema, "GetTable", "unknown table %q", name)
	}
	return e.table, nil
}

// DropTable removes name's registration. A no-op if absent.
func (m *Manager) DropTable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, name)
	m.log.Infow("table dropped", "table", name)
}

// TableNames returns the registered table names in no particular order.
func (m *Manager) TableNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	return names
}

// Lock acquires name's exclusive per-table lock for the duration of an
// Insert/Update/Delete, releasing it via the returned func. Per spec.md §5
// "mutated only ... under an exclusive per-table lock".
func (m *Manager) Lock(name string) (unlock func(), err error) {
	m.mu.RLock()
	e, ok := m.tables[name]
	m.mu.RUnlock()
	if !ok {
		return nil, chunkerr.Newf(chunkerr.Schema, "Lock", "unknown table %q", name)
	}
	e.mu.Lock()
	return e.mu.Unlock, nil
}
