// Package operator implements the physical operator pipeline (C7): the
// concrete execution of a logical query plan over chunkdb's column storage
// (spec.md §4.7). Every operator exposes num_in_tables, num_out_tables,
// name, description, recreate, and execute, and Build bridges a compiled
// *lqp.Plan into an operator tree ready to run.
package operator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chunkdb/internal/column"
	"chunkdb/internal/expr"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// ColumnID is a dense position within an operator's materialized row
// schema, the column-reference type Expression carries at its leaves
// (spec.md §4.4's "instantiated as Expression[operator.ColumnID] in the
// operator tree").
type ColumnID int

// Expression is the operator specialization of the shared expression tree.
type Expression = expr.Expression[ColumnID]

// Context carries the per-execution cancellation signal and logger through
// an operator graph (spec.md §5 "Cancellation is cooperative: an operator
// polls a cancellation token between chunks").
type Context struct {
	Ctx context.Context
	Log *zap.SugaredLogger
}

// Cancelled reports whether the run has been cancelled; operators poll
// this between chunks and abort, discarding any partial result, per
// spec.md §5/§7.
func (c *Context) Cancelled() error {
	if c == nil || c.Ctx == nil {
		return nil
	}
	select {
	case <-c.Ctx.Done():
		return c.Ctx.Err()
	default:
		return nil
	}
}

// Operator is the contract every physical operator implements (spec.md
// §4.7).
type Operator interface {
	// NumInTables is the number of input tables the operator consumes.
	NumInTables() int
	// NumOutTables is the number of result tables Execute produces: 1 for
	// every operator except Insert/Update/Delete, which return none (0).
	NumOutTables() int
	// Name is the operator's short kind name, for plan diagnostics.
	Name() string
	// Description renders a one-line human-readable summary.
	Description() string
	// Recreate returns a copy of the operator with every placeholder
	// expression bound to its value from params (keyed by placeholder id),
	// for re-executing a prepared statement with new parameters.
	Recreate(params map[int]types.Value) Operator
	// Execute runs the operator to completion and returns its result
	// table.
	Execute(ctx *Context) (*table.Table, error)
}

// rowSource is the minimal read surface Expression evaluation needs from
// an operator's input: column.BaseTable, which *table.Table already
// satisfies structurally (internal/table/table.go's `var _
// column.BaseTable = (*Table)(nil)`).
type rowSource = column.BaseTable

// evalExpr evaluates e against one row of src. src is nil only when every
// leaf of e is a literal or placeholder (the DummyTable source of an
// `INSERT ... VALUES` row, which carries no columns to read).
func evalExpr(e *Expression, src rowSource, row types.RowID, params map[int]types.Value) (types.Value, error) {
	switch e.Kind {
	case expr.KindLiteral:
		return e.Literal, nil
	case expr.KindColumn:
		if src == nil {
			return types.Value{}, fmt.Errorf("operator: column reference %v has no row source", e.Column)
		}
		return src.ValueAt(int(e.Column), row), nil
	case expr.KindPlaceholder:
		v, ok := params[e.PlaceholderID]
		if !ok {
			return types.Value{}, fmt.Errorf("operator: unbound placeholder ?%d", e.PlaceholderID)
		}
		return v, nil
	case expr.KindArithmetic:
		left, err := evalExpr(e.Children[0], src, row, params)
		if err != nil {
			return types.Value{}, err
		}
		right, err := evalExpr(e.Children[1], src, row, params)
		if err != nil {
			return types.Value{}, err
		}
		return applyArithmetic(e.Arithmetic, left, right)
	case expr.KindFunction:
		return types.Value{}, fmt.Errorf("operator: aggregate %s must be evaluated by Aggregate, not row-wise", e.Aggregate)
	case expr.KindStar:
		return types.Value{}, fmt.Errorf("operator: * cannot be evaluated as a scalar expression")
	default:
		return types.Value{}, fmt.Errorf("operator: cannot evaluate expression kind %d", e.Kind)
	}
}

// evalRow evaluates exprs against one row of src, in order.
func evalRow(exprs []*Expression, src rowSource, row types.RowID, params map[int]types.Value) ([]types.Value, error) {
	values := make([]types.Value, len(exprs))
	for i, e := range exprs {
		v, err := evalExpr(e, src, row, params)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// bindExpr returns a copy of e with every KindPlaceholder leaf resolved to
// its bound literal from params, left untouched if absent (Recreate may be
// called before every placeholder used elsewhere in the plan is bound).
func bindExpr(e *Expression, params map[int]types.Value) *Expression {
	if e == nil {
		return nil
	}
	cp := e.DeepCopy()
	bindExprInPlace(cp, params)
	return cp
}

func bindExprInPlace(e *Expression, params map[int]types.Value) {
	if e.Kind == expr.KindPlaceholder {
		if v, ok := params[e.PlaceholderID]; ok {
			e.Kind = expr.KindLiteral
			e.Literal = v
		}
		return
	}
	for _, c := range e.Children {
		bindExprInPlace(c, params)
	}
}

// bindExprs applies bindExpr to every element of a slice.
func bindExprs(exprs []*Expression, params map[int]types.Value) []*Expression {
	out := make([]*Expression, len(exprs))
	for i, e := range exprs {
		out[i] = bindExpr(e, params)
	}
	return out
}

// isFloatFamily reports whether t participates in float/double arithmetic.
func isFloatFamily(t types.ElementType) bool {
	return t == types.Float || t == types.Double
}

// applyArithmetic evaluates a binary arithmetic operator over two non-NULL
// values, or returns NULL if either operand is NULL (spec.md §4.7 numeric
// semantics). Integer division truncates toward zero and integer modulo
// follows the sign of the dividend, which is exactly Go's `/` and `%` over
// signed integers, so no extra adjustment is needed.
func applyArithmetic(op expr.ArithmeticOp, l, r types.Value) (types.Value, error) {
	if l.IsNull() || r.IsNull() {
		return types.Null, nil
	}
	if l.Type() == types.String || r.Type() == types.String {
		return types.Value{}, fmt.Errorf("operator: arithmetic is not defined over String")
	}
	if !isFloatFamily(l.Type()) && !isFloatFamily(r.Type()) {
		a, b := l.AsInt64(), r.AsInt64()
		switch op {
		case expr.Add:
			return types.NewInt64(a + b), nil
		case expr.Sub:
			return types.NewInt64(a - b), nil
		case expr.Mul:
			return types.NewInt64(a * b), nil
		case expr.Div:
			if b == 0 {
				return types.Value{}, fmt.Errorf("operator: division by zero")
			}
			return types.NewInt64(a / b), nil
		case expr.Mod:
			if b == 0 {
				return types.Value{}, fmt.Errorf("operator: division by zero")
			}
			return types.NewInt64(a % b), nil
		case expr.Pow:
			return types.NewDouble(ipow(a, b)), nil
		default:
			return types.Value{}, fmt.Errorf("operator: unsupported arithmetic operator %s", op)
		}
	}
	a, b := l.AsFloat64(), r.AsFloat64()
	switch op {
	case expr.Add:
		return types.NewDouble(a + b), nil
	case expr.Sub:
		return types.NewDouble(a - b), nil
	case expr.Mul:
		return types.NewDouble(a * b), nil
	case expr.Div:
		return types.NewDouble(a / b), nil
	case expr.Mod:
		return types.NewDouble(fmod(a, b)), nil
	case expr.Pow:
		return types.NewDouble(fpow(a, b)), nil
	default:
		return types.Value{}, fmt.Errorf("operator: unsupported arithmetic operator %s", op)
	}
}

// compareValues normalizes both operands to a common representation before
// comparing, widening across Int32/Int64/Float/Double as needed; String
// must match String. Panics if the two sides are not comparable types,
// mirroring types.Value.Compare's own contract.
func compareValues(l, r types.Value) int {
	if l.Type() == types.String || r.Type() == types.String {
		return l.Compare(r)
	}
	if isFloatFamily(l.Type()) || isFloatFamily(r.Type()) {
		a, b := l.AsFloat64(), r.AsFloat64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	a, b := l.AsInt64(), r.AsInt64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
