package translate

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/types"
)

// scanTypeOf maps a binary comparison opcode to lqp.ScanType. ok is false
// for a non-comparison operator (arithmetic, logical), which callers must
// reject per spec.md §4.6 ("the join condition must be a simple
// comparison").
func scanTypeOf(op opcode.Op) (lqp.ScanType, bool) {
	switch op {
	case opcode.EQ:
		return lqp.ScanEq, true
	case opcode.NE:
		return lqp.ScanNe, true
	case opcode.LT:
		return lqp.ScanLt, true
	case opcode.LE:
		return lqp.ScanLe, true
	case opcode.GT:
		return lqp.ScanGt, true
	case opcode.GE:
		return lqp.ScanGe, true
	default:
		return 0, false
	}
}

// arithmeticOpOf maps a binary arithmetic opcode to expr.ArithmeticOp.
// IntDiv shares Div: the truncation-toward-zero semantics spec.md §4.7
// describes are an evaluation-time property of the operand types, not a
// separate operator.
func arithmeticOpOf(op opcode.Op) (expr.ArithmeticOp, bool) {
	switch op {
	case opcode.Plus:
		return expr.Add, true
	case opcode.Minus:
		return expr.Sub, true
	case opcode.Mul:
		return expr.Mul, true
	case opcode.Div, opcode.IntDiv:
		return expr.Div, true
	case opcode.Mod:
		return expr.Mod, true
	default:
		return 0, false
	}
}

// aggregateKindOf maps an AggregateFuncExpr.F name to expr.AggregateKind.
func aggregateKindOf(name string) (expr.AggregateKind, bool) {
	switch strings.ToUpper(name) {
	case "COUNT":
		return expr.Count, true
	case "SUM":
		return expr.Sum, true
	case "MIN":
		return expr.Min, true
	case "MAX":
		return expr.Max, true
	case "AVG":
		return expr.Avg, true
	default:
		return 0, false
	}
}

// paramColumnRef wraps origin as a ParameterValue column reference, the
// form a Predicate's Value takes for a column-to-column comparison (spec.md
// §3 "A parameter value is a typed value, a column reference, or a
// positional placeholder").
func paramColumnRef(origin lqp.ColumnOrigin) types.ParameterValue {
	return types.NewParamColumnRef(origin)
}

// unwrapParen strips any number of redundant parentheses around e.
func unwrapParen(e ast.ExprNode) ast.ExprNode {
	for {
		p, ok := e.(*ast.ParenthesesExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

// columnNameOf reports whether e is a bare column reference, returning its
// name and optional table-qualifier prefix.
func columnNameOf(e ast.ExprNode) (name, prefix string, ok bool) {
	ce, ok := e.(*ast.ColumnNameExpr)
	if !ok {
		return "", "", false
	}
	return ce.Name.Name.O, ce.Name.Table.O, true
}

// exprToString renders e via the TiDB restorer, the same idiom the teacher
// uses in internal/parser/mysql/parser.go's exprToString.
func exprToString(e ast.ExprNode) (string, bool) {
	var sb strings.Builder
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := e.Restore(ctx); err != nil {
		return "", false
	}
	return sb.String(), true
}

// literalValue extracts a concrete types.Value from a parsed SQL literal
// (a *test_driver.ValueExpr once the test_driver parser hook is loaded).
func literalValue(e ast.ExprNode) (types.Value, bool) {
	ve, ok := e.(*driver.ValueExpr)
	if !ok {
		return types.Value{}, false
	}
	if ve.Datum.IsNull() {
		return types.Null, true
	}
	switch v := ve.Datum.GetValue().(type) {
	case int64:
		return types.NewInt64(v), true
	case uint64:
		return types.NewInt64(int64(v)), true
	case float32:
		return types.NewFloat(v), true
	case float64:
		return types.NewDouble(v), true
	case string:
		return types.NewString(v), true
	case []byte:
		return types.NewString(string(v)), true
	default:
		if s, ok := exprToString(e); ok {
			return types.NewString(s), true
		}
		return types.Value{}, false
	}
}

// paramValueOf converts e into a ParameterValue: a placeholder, a literal,
// or (via the caller, which checks columnNameOf first) a column reference.
func paramValueOf(e ast.ExprNode) (types.ParameterValue, bool) {
	if pm, ok := e.(*driver.ParamMarkerExpr); ok {
		return types.NewParamPlaceholder(pm.Order), true
	}
	if v, ok := literalValue(e); ok {
		return types.NewParamValue(v), true
	}
	return types.ParameterValue{}, false
}

// isCountStar reports whether an aggregate function's argument list is the
// bare `*` of COUNT(*).
func isCountStar(args []ast.ExprNode) bool {
	if len(args) != 1 {
		return false
	}
	ce, ok := args[0].(*ast.ColumnNameExpr)
	return ok && ce.Name.Name.O == "*"
}

// singleTableName extracts a plain table name from a FROM clause that must
// address exactly one table (no join): used by INSERT/UPDATE/DELETE target
// resolution.
func singleTableName(refs *ast.TableRefsClause) (string, error) {
	if refs == nil || refs.TableRefs == nil {
		return "", errTranslation("singleTableName", "missing table reference")
	}
	j := refs.TableRefs
	if j.Right != nil {
		return "", errTranslation("singleTableName", "expected a single table, not a join")
	}
	switch src := j.Left.(type) {
	case *ast.TableName:
		return src.Name.O, nil
	case *ast.TableSource:
		if tn, ok := src.Source.(*ast.TableName); ok {
			return tn.Name.O, nil
		}
	}
	return "", errTranslation("singleTableName", "expected a plain table name")
}

func qualifiedName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
