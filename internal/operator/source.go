package operator

import (
	"fmt"

	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// StoredTableOp is the physical realization of an LQP StoredTable leaf: it
// simply hands back the already-materialized table the storage manager
// holds (spec.md §4.7 names TableScan as the scan operator; a bare
// StoredTable read with no predicate has nothing to scan for).
type StoredTableOp struct {
	tableName string
	table     *table.Table
}

// NewStoredTable wraps an already-resolved table as a source operator.
func NewStoredTable(name string, t *table.Table) *StoredTableOp {
	return &StoredTableOp{tableName: name, table: t}
}

func (s *StoredTableOp) NumInTables() int    { return 0 }
func (s *StoredTableOp) NumOutTables() int   { return 1 }
func (s *StoredTableOp) Name() string        { return "StoredTable" }
func (s *StoredTableOp) Description() string { return fmt.Sprintf("reads %s", s.tableName) }
func (s *StoredTableOp) Recreate(map[int]types.Value) Operator {
	return s
}
func (s *StoredTableOp) Execute(ctx *Context) (*table.Table, error) {
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}
	if ctx.Log != nil {
		ctx.Log.Debugw("StoredTable", "table", s.tableName, "rows", s.table.RowCount())
	}
	return s.table, nil
}

// DummyTableOp is the physical realization of an LQP DummyTable leaf: a
// zero-column source offering rowCount virtual rows, the placeholder for
// `INSERT ... VALUES` and a FROM-less `SELECT <expr-list>` (spec.md §4.5).
type DummyTableOp struct {
	rowCount int
}

// NewDummyTable returns a DummyTableOp offering rowCount virtual rows.
func NewDummyTable(rowCount int) *DummyTableOp {
	return &DummyTableOp{rowCount: rowCount}
}

// RowCount is the number of virtual rows this source offers; Projection
// reads it directly rather than through Execute's table, since a
// zero-column table carries no row count of its own.
func (d *DummyTableOp) RowCount() int { return d.rowCount }

func (d *DummyTableOp) NumInTables() int  { return 0 }
func (d *DummyTableOp) NumOutTables() int { return 1 }
func (d *DummyTableOp) Name() string      { return "DummyTable" }
func (d *DummyTableOp) Description() string {
	return fmt.Sprintf("%d virtual row(s)", d.rowCount)
}
func (d *DummyTableOp) Recreate(map[int]types.Value) Operator {
	return d
}
func (d *DummyTableOp) Execute(ctx *Context) (*table.Table, error) {
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}
	return table.New(nil, nil, 0, table.Data)
}
