package operator

import (
	"fmt"

	"chunkdb/internal/lqp"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// TableScanOp is the physical realization of an LQP Predicate node (spec.md
// §4.7 "TableScan"): it reads its child's output and produces a reference
// column over the rows that satisfy the comparison, or — for an
// EXISTS/NOT EXISTS predicate — over every row or none, depending on
// whether the nested sub-plan produced any rows at all.
//
// EXISTS/NOT EXISTS is evaluated uncorrelated: the translator
// (internal/translate/predicate.go) builds the sub-plan with no reference
// to the outer row, so the sub-plan is run exactly once per TableScanOp
// execution rather than once per outer row.
type TableScanOp struct {
	child    Operator
	column   ColumnID
	scanType lqp.ScanType
	value    *Expression // right-hand operand; nil when sub is set
	value2   *Expression // BETWEEN upper bound; nil otherwise
	sub      Operator    // EXISTS/NOT EXISTS nested plan; nil otherwise
	negate   bool        // true for NOT EXISTS
}

// NewTableScan builds a TableScanOp for an ordinary (non-EXISTS) predicate.
func NewTableScan(child Operator, col ColumnID, scanType lqp.ScanType, value, value2 *Expression) *TableScanOp {
	return &TableScanOp{child: child, column: col, scanType: scanType, value: value, value2: value2}
}

// NewExistsScan builds a TableScanOp for an EXISTS/NOT EXISTS predicate.
func NewExistsScan(child, sub Operator, negate bool) *TableScanOp {
	return &TableScanOp{child: child, sub: sub, negate: negate}
}

func (s *TableScanOp) NumInTables() int  { return 1 }
func (s *TableScanOp) NumOutTables() int { return 1 }
func (s *TableScanOp) Name() string      { return "TableScan" }
func (s *TableScanOp) Description() string {
	if s.sub != nil {
		if s.negate {
			return "NOT EXISTS (subplan)"
		}
		return "EXISTS (subplan)"
	}
	return fmt.Sprintf("col[%d] %s", s.column, s.scanType)
}

func (s *TableScanOp) Recreate(params map[int]types.Value) Operator {
	cp := *s
	cp.child = s.child.Recreate(params)
	if s.value != nil {
		cp.value = bindExpr(s.value, params)
	}
	if s.value2 != nil {
		cp.value2 = bindExpr(s.value2, params)
	}
	if s.sub != nil {
		cp.sub = s.sub.Recreate(params)
	}
	return &cp
}

func (s *TableScanOp) Execute(ctx *Context) (*table.Table, error) {
	src, err := s.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}

	if s.sub != nil {
		subResult, err := s.sub.Execute(ctx)
		if err != nil {
			return nil, err
		}
		exists := subResult.RowCount() > 0
		if exists == s.negate {
			return newReferenceResult(src, nil)
		}
		return newReferenceResult(src, allRowIDs(src))
	}

	var matched []types.RowID
	for c := 0; c < src.ChunkCount(); c++ {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		chunk := src.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			ok, err := s.matches(src, row)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = append(matched, row)
			}
		}
	}
	if ctx.Log != nil {
		ctx.Log.Debugw("TableScan", "op", s.scanType, "in", src.RowCount(), "matched", len(matched))
	}
	return newReferenceResult(src, matched)
}

// matches evaluates the scan comparison for one row. A NULL on either side
// makes the predicate result NULL, which filters the row out (spec.md
// §4.7 "comparisons involving NULL evaluate to NULL and a NULL predicate
// result filters the row out").
func (s *TableScanOp) matches(src rowSource, row types.RowID) (bool, error) {
	left := src.ValueAt(int(s.column), row)
	if left.IsNull() {
		return false, nil
	}

	if s.scanType == lqp.ScanBetween {
		lo, err := evalExpr(s.value, src, row, nil)
		if err != nil {
			return false, err
		}
		hi, err := evalExpr(s.value2, src, row, nil)
		if err != nil {
			return false, err
		}
		if lo.IsNull() || hi.IsNull() {
			return false, nil
		}
		return compareValues(left, lo) >= 0 && compareValues(left, hi) <= 0, nil
	}

	right, err := evalExpr(s.value, src, row, nil)
	if err != nil {
		return false, err
	}
	if right.IsNull() {
		return false, nil
	}

	if s.scanType == lqp.ScanLike || s.scanType == lqp.ScanNotLike {
		if left.Type() != types.String || right.Type() != types.String {
			return false, fmt.Errorf("operator: LIKE requires String operands")
		}
		m := likeMatch(left.Str(), right.Str())
		if s.scanType == lqp.ScanNotLike {
			m = !m
		}
		return m, nil
	}

	cmp := compareValues(left, right)
	switch s.scanType {
	case lqp.ScanEq:
		return cmp == 0, nil
	case lqp.ScanNe:
		return cmp != 0, nil
	case lqp.ScanLt:
		return cmp < 0, nil
	case lqp.ScanLe:
		return cmp <= 0, nil
	case lqp.ScanGt:
		return cmp > 0, nil
	case lqp.ScanGe:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("operator: unsupported scan type %s", s.scanType)
	}
}
