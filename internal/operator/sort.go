package operator

import (
	"fmt"
	"sort"

	"chunkdb/internal/lqp"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// SortKey pairs a column with its sort direction, the operator-level
// counterpart of lqp.SortKey.
type SortKey struct {
	Column ColumnID
	Mode   lqp.SortMode
}

// SortOp stably sorts its input by each key in declared order and
// materializes a reference result (spec.md §4.7 "Sort"). NULLs sort before
// every concrete value, in either direction — the spec does not fix a NULL
// ordering, so DESIGN.md records this as the chosen convention.
type SortOp struct {
	child Operator
	keys  []SortKey
}

// NewSort builds a SortOp.
func NewSort(child Operator, keys []SortKey) *SortOp {
	return &SortOp{child: child, keys: keys}
}

func (s *SortOp) NumInTables() int    { return 1 }
func (s *SortOp) NumOutTables() int   { return 1 }
func (s *SortOp) Name() string        { return "Sort" }
func (s *SortOp) Description() string { return fmt.Sprintf("%d sort key(s)", len(s.keys)) }

func (s *SortOp) Recreate(params map[int]types.Value) Operator {
	return &SortOp{child: s.child.Recreate(params), keys: s.keys}
}

func (s *SortOp) Execute(ctx *Context) (*table.Table, error) {
	src, err := s.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}

	rows := allRowIDs(src)
	sort.SliceStable(rows, func(i, j int) bool {
		return s.less(src, rows[i], rows[j])
	})
	return newReferenceResult(src, rows)
}

func (s *SortOp) less(src rowSource, a, b types.RowID) bool {
	for _, k := range s.keys {
		va := src.ValueAt(int(k.Column), a)
		vb := src.ValueAt(int(k.Column), b)
		cmp := compareNullable(va, vb)
		if cmp == 0 {
			continue
		}
		if k.Mode == lqp.SortDescending && !va.IsNull() && !vb.IsNull() {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// compareNullable orders NULL before every concrete value.
func compareNullable(a, b types.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	return compareValues(a, b)
}
