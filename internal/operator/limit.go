package operator

import (
	"fmt"

	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// LimitOp trims its (already-ordered) input to [offset, offset+limit) and
// materializes a reference result (spec.md §4.7/§5 "Limit over an
// already-sorted input" must preserve input order). A negative limit means
// unbounded (no LIMIT clause, only an OFFSET).
type LimitOp struct {
	child  Operator
	limit  int64
	offset int64
}

// NewLimit builds a LimitOp.
func NewLimit(child Operator, limit, offset int64) *LimitOp {
	return &LimitOp{child: child, limit: limit, offset: offset}
}

func (l *LimitOp) NumInTables() int  { return 1 }
func (l *LimitOp) NumOutTables() int { return 1 }
func (l *LimitOp) Name() string      { return "Limit" }
func (l *LimitOp) Description() string {
	return fmt.Sprintf("limit %d offset %d", l.limit, l.offset)
}

func (l *LimitOp) Recreate(params map[int]types.Value) Operator {
	return &LimitOp{child: l.child.Recreate(params), limit: l.limit, offset: l.offset}
}

func (l *LimitOp) Execute(ctx *Context) (*table.Table, error) {
	src, err := l.child.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cancelled(); err != nil {
		return nil, err
	}

	rows := allRowIDs(src)
	start := int(l.offset)
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if l.limit >= 0 && start+int(l.limit) < end {
		end = start + int(l.limit)
	}
	return newReferenceResult(src, rows[start:end])
}
