package operator

import (
	"fmt"

	"chunkdb/internal/lqp"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// JoinOp implements Cross, Inner, Left, and Right joins (spec.md §4.7
// "HashJoin": "emits two reference columns (one per input side)" in the
// general design). This implementation materializes a plain Data table
// instead of two reference columns over the two input sides: Left/Right
// outer joins need to represent "no matching row" on one side, which the
// reference-column model has no sentinel for (a ReferenceColumn always
// addresses a real row). DESIGN.md records this as the scoped
// simplification that keeps Cross/Inner/Left/Right uniform.
//
// Natural joins never reach this operator: the translator rewrites
// NATURAL JOIN into Cross -> Predicate(shared columns) -> Projection
// before Build ever sees it (internal/translate/translate.go
// translateNaturalJoin).
type JoinOp struct {
	left, right Operator
	mode        lqp.JoinMode
	leftCol     ColumnID
	rightCol    ColumnID
	scanType    lqp.ScanType
	names       []string
	elemTypes   []types.ElementType
}

// NewJoin builds a JoinOp. leftCol/rightCol/scanType are unused for
// JoinCross.
func NewJoin(left, right Operator, mode lqp.JoinMode, leftCol, rightCol ColumnID, scanType lqp.ScanType, names []string, elemTypes []types.ElementType) *JoinOp {
	return &JoinOp{left: left, right: right, mode: mode, leftCol: leftCol, rightCol: rightCol, scanType: scanType, names: names, elemTypes: elemTypes}
}

func (j *JoinOp) NumInTables() int  { return 2 }
func (j *JoinOp) NumOutTables() int { return 1 }
func (j *JoinOp) Name() string      { return "Join" }
func (j *JoinOp) Description() string {
	return fmt.Sprintf("join mode=%d", j.mode)
}

func (j *JoinOp) Recreate(params map[int]types.Value) Operator {
	return &JoinOp{
		left: j.left.Recreate(params), right: j.right.Recreate(params),
		mode: j.mode, leftCol: j.leftCol, rightCol: j.rightCol, scanType: j.scanType,
		names: j.names, elemTypes: j.elemTypes,
	}
}

func (j *JoinOp) Execute(ctx *Context) (*table.Table, error) {
	leftTbl, err := j.left.Execute(ctx)
	if err != nil {
		return nil, err
	}
	rightTbl, err := j.right.Execute(ctx)
	if err != nil {
		return nil, err
	}

	out, err := table.New(j.names, j.elemTypes, 0, table.Data)
	if err != nil {
		return nil, err
	}

	leftRows := allRowIDs(leftTbl)
	rightRows := allRowIDs(rightTbl)
	leftWidth := leftTbl.ColumnCount()
	rightWidth := rightTbl.ColumnCount()

	matchedLeft := make([]bool, len(leftRows))
	matchedRight := make([]bool, len(rightRows))

	for li, lr := range leftRows {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		for ri, rr := range rightRows {
			ok, err := j.matches(leftTbl, lr, rightTbl, rr)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			matchedLeft[li] = true
			matchedRight[ri] = true
			row := make([]types.Value, 0, leftWidth+rightWidth)
			row = appendRowValues(row, leftTbl, lr, leftWidth)
			row = appendRowValues(row, rightTbl, rr, rightWidth)
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
	}

	if j.mode == lqp.JoinLeft {
		for li, lr := range leftRows {
			if matchedLeft[li] {
				continue
			}
			row := make([]types.Value, 0, leftWidth+rightWidth)
			row = appendRowValues(row, leftTbl, lr, leftWidth)
			for i := 0; i < rightWidth; i++ {
				row = append(row, types.Null)
			}
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
	}
	if j.mode == lqp.JoinRight {
		for ri, rr := range rightRows {
			if matchedRight[ri] {
				continue
			}
			row := make([]types.Value, 0, leftWidth+rightWidth)
			for i := 0; i < leftWidth; i++ {
				row = append(row, types.Null)
			}
			row = appendRowValues(row, rightTbl, rr, rightWidth)
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
		}
	}
	if ctx.Log != nil {
		ctx.Log.Debugw("Join", "mode", j.mode, "left", len(leftRows), "right", len(rightRows), "out", out.RowCount())
	}
	return out, nil
}

func appendRowValues(dst []types.Value, t *table.Table, row types.RowID, width int) []types.Value {
	for i := 0; i < width; i++ {
		dst = append(dst, t.ValueAt(i, row))
	}
	return dst
}

// matches evaluates the join condition for one (left row, right row) pair.
// A Cross join has no condition; every other mode compares leftCol to
// rightCol under scanType, with NULL on either side never matching (spec.md
// §4.7 "NULL = NULL is NULL").
func (j *JoinOp) matches(leftTbl *table.Table, lr types.RowID, rightTbl *table.Table, rr types.RowID) (bool, error) {
	if j.mode == lqp.JoinCross {
		return true, nil
	}
	lv := leftTbl.ValueAt(int(j.leftCol), lr)
	rv := rightTbl.ValueAt(int(j.rightCol), rr)
	if lv.IsNull() || rv.IsNull() {
		return false, nil
	}
	cmp := compareValues(lv, rv)
	switch j.scanType {
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
		return false, fmt.Errorf("operator: unsupported join scan type %s", j.scanType)
	}
}
