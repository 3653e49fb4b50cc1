package operator

import (
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// ValidateOp is the MVCC-style read filter of spec.md §4.5/§4.7: every read
// plan is rooted under a Validate node that is expected to drop rows not
// visible to the reader's snapshot. This implementation carries no
// transaction/versioning layer (spec.md's Non-goals exclude MVCC and
// transactions outright), so ValidateOp has nothing to filter by and simply
// forwards its child's result unchanged. It stays a distinct operator,
// rather than being optimized away at Build time, so the plan shape below
// it (and any future visibility check) matches spec.md's node list exactly.
type ValidateOp struct {
	child Operator
}

// NewValidate builds a ValidateOp.
func NewValidate(child Operator) *ValidateOp {
	return &ValidateOp{child: child}
}

func (v *ValidateOp) NumInTables() int    { return 1 }
func (v *ValidateOp) NumOutTables() int   { return 1 }
func (v *ValidateOp) Name() string        { return "Validate" }
func (v *ValidateOp) Description() string { return "snapshot visibility filter (pass-through)" }

func (v *ValidateOp) Recreate(params map[int]types.Value) Operator {
	return &ValidateOp{child: v.child.Recreate(params)}
}

func (v *ValidateOp) Execute(ctx *Context) (*table.Table, error) {
	return v.child.Execute(ctx)
}
