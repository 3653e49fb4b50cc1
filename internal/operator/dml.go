package operator

import (
	"fmt"

	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// InsertOp appends its child's rows onto a target Data table, holding the
// table's exclusive lock for the duration (spec.md §4.7 "Insert ... under
// an exclusive per-table lock", §5 "Concurrency & Resource Model"). Its
// child is the source already in the target's column order: a Projection
// over a DummyTable for a VALUES row, or the translated SELECT's plan.
type InsertOp struct {
	child       Operator
	targetTable string
	mgr         *storage.Manager
}

// NewInsert builds an InsertOp.
func NewInsert(child Operator, targetTable string, mgr *storage.Manager) *InsertOp {
	return &InsertOp{child: child, targetTable: targetTable, mgr: mgr}
}

func (i *InsertOp) NumInTables() int    { return 1 }
func (i *InsertOp) NumOutTables() int   { return 0 }
func (i *InsertOp) Name() string        { return "Insert" }
func (i *InsertOp) Description() string { return fmt.Sprintf("insert into %s", i.targetTable) }

func (i *InsertOp) Recreate(params map[int]types.Value) Operator {
	return &InsertOp{child: i.child.Recreate(params), targetTable: i.targetTable, mgr: i.mgr}
}

func (i *InsertOp) Execute(ctx *Context) (*table.Table, error) {
	src, err := i.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	unlock, err := i.mgr.Lock(i.targetTable)
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := i.mgr.GetTable(i.targetTable)
	if err != nil {
		return nil, err
	}
	width := target.ColumnCount()
	for c := 0; c < src.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := src.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			values := make([]types.Value, width)
			for col := 0; col < width; col++ {
				values[col] = src.ValueAt(col, row)
			}
			if err := target.AppendRow(values); err != nil {
				return nil, fmt.Errorf("operator: insert into %s: %w", i.targetTable, err)
			}
		}
	}
	if ctx.Log != nil {
		ctx.Log.Infow("Insert", "table", i.targetTable, "rows", src.RowCount())
	}
	return nil, nil
}

// UpdateOp rewrites a target Data table's rows under its exclusive lock,
// implemented as Delete+Insert on the same pipeline (spec.md §4.7
// "Update is implemented as Delete+Insert"): the child (a Validate ->
// Predicate* chain over the target) yields only the rows the WHERE clause
// matched; the assignment list is evaluated against each of those rows, and
// every other row of the target is carried through unchanged before the
// table is rebuilt wholesale from the merged sequence.
type UpdateOp struct {
	child       Operator
	assignments []*Expression
	targetTable string
	mgr         *storage.Manager
}

// NewUpdate builds an UpdateOp. child yields the matched rows (addressing
// the target table, directly or through a chain of Predicate reference
// layers); assignments is evaluated once per matched row.
func NewUpdate(child Operator, assignments []*Expression, targetTable string, mgr *storage.Manager) *UpdateOp {
	return &UpdateOp{child: child, assignments: assignments, targetTable: targetTable, mgr: mgr}
}

func (u *UpdateOp) NumInTables() int    { return 1 }
func (u *UpdateOp) NumOutTables() int   { return 0 }
func (u *UpdateOp) Name() string        { return "Update" }
func (u *UpdateOp) Description() string { return fmt.Sprintf("update %s", u.targetTable) }

func (u *UpdateOp) Recreate(params map[int]types.Value) Operator {
	return &UpdateOp{
		child:       u.child.Recreate(params),
		assignments: bindExprs(u.assignments, params),
		targetTable: u.targetTable,
		mgr:         u.mgr,
	}
}

func (u *UpdateOp) Execute(ctx *Context) (*table.Table, error) {
	matched, err := u.child.Execute(ctx)
	if err != nil {
		return nil, err
	}

	// Evaluate the assignment list once per matched row, keyed by the
	// row's id in the target table, before taking the lock: assignment
	// expressions may reference the row's current values (e.g. `total =
	// total + 10`), which must come from the pre-update row, not a
	// partially rebuilt one.
	assigned := make(map[types.RowID][]types.Value, matched.RowCount())
	for c := 0; c < matched.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := matched.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			values, err := evalRow(u.assignments, matched, row, nil)
			if err != nil {
				return nil, err
			}
			root, err := resolveRootRow(matched, row)
			if err != nil {
				return nil, err
			}
			assigned[root] = values
		}
	}

	unlock, err := u.mgr.Lock(u.targetTable)
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := u.mgr.GetTable(u.targetTable)
	if err != nil {
		return nil, err
	}
	width := target.ColumnCount()
	rows := make([][]types.Value, 0, target.RowCount())
	for c := 0; c < target.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := target.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			if values, ok := assigned[row]; ok {
				rows = append(rows, values)
				continue
			}
			values := make([]types.Value, width)
			for col := 0; col < width; col++ {
				values[col] = target.ValueAt(col, row)
			}
			rows = append(rows, values)
		}
	}
	if err := target.Rebuild(rows); err != nil {
		return nil, fmt.Errorf("operator: update %s: %w", u.targetTable, err)
	}
	if ctx.Log != nil {
		ctx.Log.Infow("Update", "table", u.targetTable, "matched", len(assigned), "rows", len(rows))
	}
	return nil, nil
}

// DeleteOp removes rows from a target Data table under its exclusive lock.
// Its child yields the matched rows (the Validate -> Predicate* chain the
// translator builds, per spec.md §4.6 "Delete: Build StoredTable -> Validate ->
// [Predicate]* -> Delete"); DeleteOp computes the surviving rows as the
// target's full row set minus the child's matched row ids, and rebuilds the
// table wholesale from those survivors (spec.md §4.7 "Delete ... under an
// exclusive per-table lock").
type DeleteOp struct {
	child       Operator
	targetTable string
	mgr         *storage.Manager
}

// NewDelete builds a DeleteOp. child must yield only the rows that should
// be removed.
func NewDelete(child Operator, targetTable string, mgr *storage.Manager) *DeleteOp {
	return &DeleteOp{child: child, targetTable: targetTable, mgr: mgr}
}

func (d *DeleteOp) NumInTables() int    { return 1 }
func (d *DeleteOp) NumOutTables() int   { return 0 }
func (d *DeleteOp) Name() string        { return "Delete" }
func (d *DeleteOp) Description() string { return fmt.Sprintf("delete from %s", d.targetTable) }

func (d *DeleteOp) Recreate(params map[int]types.Value) Operator {
	return &DeleteOp{child: d.child.Recreate(params), targetTable: d.targetTable, mgr: d.mgr}
}

func (d *DeleteOp) Execute(ctx *Context) (*table.Table, error) {
	matched, err := d.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	toDelete, err := rootRowIDSet(matched)
	if err != nil {
		return nil, err
	}

	unlock, err := d.mgr.Lock(d.targetTable)
	if err != nil {
		return nil, err
	}
	defer unlock()

	target, err := d.mgr.GetTable(d.targetTable)
	if err != nil {
		return nil, err
	}
	width := target.ColumnCount()
	rows := make([][]types.Value, 0, target.RowCount()-len(toDelete))
	for c := 0; c < target.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := target.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			if _, dead := toDelete[row]; dead {
				continue
			}
			values := make([]types.Value, width)
			for col := 0; col < width; col++ {
				values[col] = target.ValueAt(col, row)
			}
			rows = append(rows, values)
		}
	}
	if err := target.Rebuild(rows); err != nil {
		return nil, fmt.Errorf("operator: delete from %s: %w", d.targetTable, err)
	}
	if ctx.Log != nil {
		ctx.Log.Infow("Delete", "table", d.targetTable, "deleted", len(toDelete), "remaining", len(rows))
	}
	return nil, nil
}
