package operator

import (
	"fmt"
	"sort"

	"chunkdb/internal/chunkerr"
	"chunkdb/internal/column"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// UnionOp implements the Positions-mode SetUnion of spec.md §4.7: the
// union of two same-schema References tables' row-id sets, not a value
// union. Both inputs are expected to reference the same base table (the
// shape the translator always builds: Union's two branches both filter the
// same upstream input — spec.md §4.5 "Positions-mode Union node over two
// inputs of identical schema"); a debug-style invariant check rejects
// inputs that do not (spec.md §4.7 step 2 "in debug builds this is
// asserted").
//
// The general algorithm segments reference columns by shared position
// list and merges one virtual position list per segment. Every reference
// table this implementation produces (TableScanOp, SortOp, LimitOp,
// UnionOp itself) is always exactly one segment spanning every output
// column, so segment identification collapses to reading the table's
// single base table and building one merged position list — DESIGN.md
// records this as the scoping decision that lets UnionOp skip general
// multi-segment bookkeeping while still implementing the chunking and
// merge semantics of §4.7 faithfully.
type UnionOp struct {
	left, right Operator
}

// NewUnion builds a UnionOp.
func NewUnion(left, right Operator) *UnionOp {
	return &UnionOp{left: left, right: right}
}

func (u *UnionOp) NumInTables() int  { return 2 }
func (u *UnionOp) NumOutTables() int { return 1 }
func (u *UnionOp) Name() string      { return "SetUnion" }
func (u *UnionOp) Description() string {
	return "union of row-id sets"
}

func (u *UnionOp) Recreate(params map[int]types.Value) Operator {
	return &UnionOp{left: u.left.Recreate(params), right: u.right.Recreate(params)}
}

func (u *UnionOp) Execute(ctx *Context) (*table.Table, error) {
	left, err := u.left.Execute(ctx)
	if err != nil {
		return nil, err
	}
	right, err := u.right.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}
	return setUnion(left, right)
}

// setUnion implements spec.md §4.7's six-step SetUnion algorithm,
// specialized to the single-segment shape every reference table in this
// implementation has.
func setUnion(left, right *table.Table) (*table.Table, error) {
	// Step 1: schema validation.
	if err := validateUnionSchema(left, right); err != nil {
		return nil, err
	}
	if left.RowCount() == 0 {
		return right, nil
	}
	if right.RowCount() == 0 {
		return left, nil
	}

	leftBase, err := segmentBase(left)
	if err != nil {
		return nil, err
	}
	rightBase, err := segmentBase(right)
	if err != nil {
		return nil, err
	}
	if leftBase != rightBase {
		return nil, chunkerr.Newf(chunkerr.Invariant, "SetUnion", "inputs do not share a base table")
	}

	// Steps 3/4: per-input position lists, sorted into a virtual position
	// list by row-id order (the lexicographic comparison over the single
	// segment's one column range is exactly RowID's own total order).
	leftRows := allRowIDs(left)
	rightRows := allRowIDs(right)
	sort.Slice(leftRows, func(i, j int) bool { return leftRows[i].Less(leftRows[j]) })
	sort.Slice(rightRows, func(i, j int) bool { return rightRows[i].Less(rightRows[j]) })

	// Step 5: merge of two sorted sequences, emitting each distinct row id
	// exactly once.
	merged := mergeSortedUniqueRowIDs(leftRows, rightRows)

	// Step 6: chunk emission at max(left_chunk_size, right_chunk_size).
	// table.New always rewrites a non-positive chunk size to
	// DefaultChunkSize, so ChunkSize() is never 0 in practice; guarded
	// explicitly anyway, since a future caller of table.New's chunkSize
	// parameter (or a zero-sized reference table) must not turn this loop
	// into an infinite one.
	chunkSize := left.ChunkSize()
	if right.ChunkSize() > chunkSize {
		chunkSize = right.ChunkSize()
	}
	if chunkSize <= 0 {
		chunkSize = len(merged)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	names, elemTypes := schemaOf(left)
	out, err := table.New(names, elemTypes, 0, table.References)
	if err != nil {
		return nil, err
	}
	for start := 0; start < len(merged); start += chunkSize {
		end := start + chunkSize
		if end > len(merged) {
			end = len(merged)
		}
		rows := append([]types.RowID(nil), merged[start:end]...)
		posList := column.NewPosList(rows)
		cols := make([]column.Column, len(names))
		for i := range cols {
			cols[i] = column.NewReferenceColumn(leftBase, i, posList)
		}
		if err := out.AppendChunk(table.NewReferenceChunk(cols)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func validateUnionSchema(left, right *table.Table) error {
	if left.ColumnCount() != right.ColumnCount() {
		return chunkerr.Newf(chunkerr.Schema, "SetUnion", "column count mismatch: %d vs %d", left.ColumnCount(), right.ColumnCount())
	}
	for i := 0; i < left.ColumnCount(); i++ {
		if left.ColumnName(i) != right.ColumnName(i) {
			return chunkerr.Newf(chunkerr.Schema, "SetUnion", "column %d name mismatch: %q vs %q", i, left.ColumnName(i), right.ColumnName(i))
		}
		if left.ColumnType(i) != right.ColumnType(i) {
			return chunkerr.Newf(chunkerr.Schema, "SetUnion", "column %d type mismatch: %s vs %s", i, left.ColumnType(i), right.ColumnType(i))
		}
	}
	return nil
}

// segmentBase reads a single-segment reference table's shared base table
// via its first column, which must be a *column.ReferenceColumn.
func segmentBase(t *table.Table) (column.BaseTable, error) {
	if t.ChunkCount() == 0 || t.ColumnCount() == 0 {
		return nil, chunkerr.Newf(chunkerr.Invariant, "SetUnion", "empty input has no base table")
	}
	rc, ok := t.Chunk(0).Column(0).(*column.ReferenceColumn)
	if !ok {
		return nil, fmt.Errorf("operator: SetUnion input must be a reference table")
	}
	return rc.Base(), nil
}

// mergeSortedUniqueRowIDs performs the standard sorted-sequence union:
// advance whichever side is lexicographically smaller; on equality, emit
// once and advance both (spec.md §4.7 step 5).
func mergeSortedUniqueRowIDs(left, right []types.RowID) []types.RowID {
	merged := make([]types.RowID, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i].Equal(right[j]):
			merged = append(merged, left[i])
			i++
			j++
		case left[i].Less(right[j]):
			merged = append(merged, left[i])
			i++
		default:
			merged = append(merged, right[j])
			j++
		}
	}
	merged = append(merged, left[i:]...)
	merged = append(merged, right[j:]...)
	return merged
}
