package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
)

// translateProjection builds a plain (non-aggregating) Projection node
// from a SELECT field list (spec.md §4.6 step 3).
func (tr *translator) translateProjection(input lqp.NodeID, fields *ast.FieldList) (lqp.NodeID, error) {
	exprs, err := tr.translateSelectFields(input, fields)
	if err != nil {
		return lqp.NoNode, err
	}
	return tr.plan.NewProjection(input, exprs), nil
}

// translateSelectFields expands each select field, including `*` and
// `table.*` wildcards, into a dense Expression list.
func (tr *translator) translateSelectFields(input lqp.NodeID, fields *ast.FieldList) ([]*lqp.Expression, error) {
	if fields == nil {
		return nil, nil
	}
	var out []*lqp.Expression
	for _, f := range fields.Fields {
		if f.WildCard != nil {
			prefix := f.WildCard.Table.O
			matched := false
			for _, c := range tr.plan.OutputColumns(input) {
				if prefix != "" && c.Qualifier != prefix {
					continue
				}
				matched = true
				out = append(out, expr.NewColumn[lqp.ColumnOrigin](c.Origin))
			}
			if !matched {
				return nil, errTranslation("translateSelectFields", "no columns match wildcard %q", qualifiedName(prefix, "*"))
			}
			continue
		}
		e, err := tr.translateScalarExpr(input, f.Expr)
		if err != nil {
			return nil, err
		}
		if alias := aliasOf(f); alias != "" {
			e = e.WithAlias(alias)
		}
		out = append(out, e)
	}
	return out, nil
}

// translateScalarExpr translates a single non-predicate expression: a
// column reference, a literal, a placeholder, an aggregate call, or
// arithmetic (spec.md §4.4).
func (tr *translator) translateScalarExpr(input lqp.NodeID, e ast.ExprNode) (*lqp.Expression, error) {
	switch x := unwrapParen(e).(type) {
	case *ast.ColumnNameExpr:
		origin, err := tr.plan.FindColumnOriginByName(input, x.Name.Name.O, x.Name.Table.O)
		if err != nil {
			return nil, wrapTranslation("translateScalarExpr", err)
		}
		return expr.NewColumn[lqp.ColumnOrigin](origin), nil
	case *driver.ValueExpr:
		v, ok := literalValue(x)
		if !ok {
			return nil, errTranslation("translateScalarExpr", "unsupported literal")
		}
		return expr.NewLiteral[lqp.ColumnOrigin](v), nil
	case *driver.ParamMarkerExpr:
		return expr.NewPlaceholder[lqp.ColumnOrigin](x.Order), nil
	case *ast.AggregateFuncExpr:
		return tr.translateAggFuncExpr(input, x)
	case *ast.BinaryOperationExpr:
		return tr.translateArithmeticOrLogical(input, x)
	default:
		return nil, errTranslation("translateScalarExpr", "unsupported expression %T", e)
	}
}

// translateArithmeticOrLogical builds an Arithmetic expression node. A
// comparison or logical operator in a scalar position (e.g. a SELECT item)
// is rejected with a translation error; only the predicate pipeline
// (predicate.go) translates those.
func (tr *translator) translateArithmeticOrLogical(input lqp.NodeID, b *ast.BinaryOperationExpr) (*lqp.Expression, error) {
	op, ok := arithmeticOpOf(b.Op)
	if !ok {
		return nil, errTranslation("translateArithmeticOrLogical", "unsupported operator in expression position")
	}
	left, err := tr.translateScalarExpr(input, b.L)
	if err != nil {
		return nil, err
	}
	right, err := tr.translateScalarExpr(input, b.R)
	if err != nil {
		return nil, err
	}
	return expr.NewArithmetic(op, left, right), nil
}

// aliasOf returns a select field's AS name, or "" if it has none.
func aliasOf(f *ast.SelectField) string {
	return f.AsName.O
}
