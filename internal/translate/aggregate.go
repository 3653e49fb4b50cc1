package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/types"
)

// translateAggFuncExpr converts a single aggregate function call into an
// expr.Expression (spec.md §4.4's Function kind). COUNT(*) carries no
// children.
func (tr *translator) translateAggFuncExpr(input lqp.NodeID, f *ast.AggregateFuncExpr) (*lqp.Expression, error) {
	kind, ok := aggregateKindOf(f.F)
	if !ok {
		return nil, errTranslation("translateAggFuncExpr", "unsupported aggregate function %q", f.F)
	}
	if kind == expr.Count && isCountStar(f.Args) {
		return expr.NewFunction[lqp.ColumnOrigin](expr.Count), nil
	}
	if len(f.Args) != 1 {
		return nil, errTranslation("translateAggFuncExpr", "aggregate function %q takes exactly one argument", f.F)
	}
	arg, err := tr.translateScalarExpr(input, f.Args[0])
	if err != nil {
		return nil, err
	}
	return expr.NewFunction(kind, arg), nil
}

// fieldSlot records how one SELECT item maps onto an Aggregate node's
// dense output: either a GROUP BY column (by its group index) or an
// aggregate expression (by its expression index).
type fieldSlot struct {
	isGroup bool
	index   int
	alias   string
}

// translateAggregate builds the Aggregate node for a GROUP BY / aggregate
// function SELECT (spec.md §4.6, §4.5 "Aggregate"): group-by columns
// first, then aggregate expressions, with an optional HAVING filter and a
// final reordering Projection matching the SELECT list (SPEC_FULL.md's
// HAVING supplement, grounded in lqp.AggregateColumnOrigin /
// lqp.AppendAggregateExpression).
func (tr *translator) translateAggregate(input lqp.NodeID, sel *ast.SelectStmt) (lqp.NodeID, error) {
	var groupOrigins []lqp.ColumnOrigin
	groupIndex := make(map[lqp.ColumnOrigin]int)
	if sel.GroupBy != nil {
		for _, item := range sel.GroupBy.Items {
			name, prefix, ok := columnNameOf(unwrapParen(item.Expr))
			if !ok {
				return lqp.NoNode, errTranslation("translateAggregate", "GROUP BY item must be a column reference")
			}
			origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
			if err != nil {
				return lqp.NoNode, wrapTranslation("translateAggregate", err)
			}
			groupIndex[origin] = len(groupOrigins)
			groupOrigins = append(groupOrigins, origin)
		}
	}

	var aggExprs []*lqp.Expression
	var fields []fieldSlot

	if sel.Fields != nil {
		for _, f := range sel.Fields.Fields {
			if f.WildCard != nil {
				return lqp.NoNode, errTranslation("translateAggregate", "* is not allowed in an aggregating SELECT")
			}
			alias := aliasOf(f)

			if agg, ok := unwrapParen(f.Expr).(*ast.AggregateFuncExpr); ok {
				built, err := tr.translateAggFuncExpr(input, agg)
				if err != nil {
					return lqp.NoNode, err
				}
				idx := indexOfEqual(aggExprs, built)
				if idx == -1 {
					idx = len(aggExprs)
					aggExprs = append(aggExprs, built)
				}
				fields = append(fields, fieldSlot{index: idx, alias: alias})
				continue
			}

			name, prefix, ok := columnNameOf(unwrapParen(f.Expr))
			if !ok {
				return lqp.NoNode, errTranslation("translateAggregate", "non-aggregate SELECT item must be a GROUP BY column")
			}
			origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
			if err != nil {
				return lqp.NoNode, wrapTranslation("translateAggregate", err)
			}
			idx, ok := groupIndex[origin]
			if !ok {
				return lqp.NoNode, errTranslation("translateAggregate", "column %q must appear in GROUP BY or be aggregated", name)
			}
			fields = append(fields, fieldSlot{isGroup: true, index: idx, alias: alias})
		}
	}

	aggID := tr.plan.NewAggregate(input, aggExprs, groupOrigins)

	current := aggID
	if sel.Having != nil && sel.Having.Expr != nil {
		var err error
		current, err = tr.translateHavingCondition(aggID, input, aggID, sel.Having.Expr)
		if err != nil {
			return lqp.NoNode, err
		}
	}

	exprs := make([]*lqp.Expression, len(fields))
	for i, f := range fields {
		var origin lqp.ColumnOrigin
		if f.isGroup {
			origin = lqp.ColumnOrigin{Node: aggID, Column: f.index}
		} else {
			origin = lqp.ColumnOrigin{Node: aggID, Column: len(groupOrigins) + f.index}
		}
		col := expr.NewColumn[lqp.ColumnOrigin](origin)
		if f.alias != "" {
			col = col.WithAlias(f.alias)
		}
		exprs[i] = col
	}
	return tr.plan.NewProjection(current, exprs), nil
}

func indexOfEqual(exprs []*lqp.Expression, e *lqp.Expression) int {
	for i, x := range exprs {
		if x.Equal(e) {
			return i
		}
	}
	return -1
}

// translateHavingCondition mirrors translateCondition's AND/OR splitting,
// but resolves each operand through havingOperand so a HAVING clause may
// reference either a GROUP BY column or an aggregate (spec.md §4.6 "A
// HAVING clause may reference aggregates not in the select list").
func (tr *translator) translateHavingCondition(aggID, preAggInput, current lqp.NodeID, e ast.ExprNode) (lqp.NodeID, error) {
	e = unwrapParen(e)
	if bin, ok := e.(*ast.BinaryOperationExpr); ok {
		switch bin.Op {
		case opcode.LogicAnd:
			next, err := tr.translateHavingCondition(aggID, preAggInput, current, bin.L)
			if err != nil {
				return lqp.NoNode, err
			}
			return tr.translateHavingCondition(aggID, preAggInput, next, bin.R)
		case opcode.LogicOr:
			left, err := tr.translateHavingCondition(aggID, preAggInput, current, bin.L)
			if err != nil {
				return lqp.NoNode, err
			}
			right, err := tr.translateHavingCondition(aggID, preAggInput, current, bin.R)
			if err != nil {
				return lqp.NoNode, err
			}
			return tr.plan.NewUnion(left, right), nil
		default:
			return tr.translateHavingComparison(aggID, preAggInput, current, bin)
		}
	}
	return lqp.NoNode, errTranslation("translateHavingCondition", "unsupported HAVING expression %T", e)
}

// havingOperand resolves a HAVING operand to a ColumnOrigin against aggID:
// a plain column must already be a GROUP BY column; an aggregate call is
// looked up by structural equality among aggID's existing expressions, or
// appended as a new hidden one.
func (tr *translator) havingOperand(aggID, preAggInput lqp.NodeID, e ast.ExprNode) (lqp.ColumnOrigin, bool, error) {
	e = unwrapParen(e)
	if name, prefix, ok := columnNameOf(e); ok {
		origin, err := tr.plan.FindColumnOriginByName(aggID, name, prefix)
		if err != nil {
			return lqp.ColumnOrigin{}, false, wrapTranslation("havingOperand", err)
		}
		return origin, true, nil
	}
	if f, ok := e.(*ast.AggregateFuncExpr); ok {
		built, err := tr.translateAggFuncExpr(preAggInput, f)
		if err != nil {
			return lqp.ColumnOrigin{}, false, err
		}
		if origin, ok := tr.plan.AggregateColumnOrigin(aggID, built); ok {
			return origin, true, nil
		}
		return tr.plan.AppendAggregateExpression(aggID, built), true, nil
	}
	return lqp.ColumnOrigin{}, false, nil
}

func (tr *translator) translateHavingComparison(aggID, preAggInput, current lqp.NodeID, b *ast.BinaryOperationExpr) (lqp.NodeID, error) {
	scanType, ok := scanTypeOf(b.Op)
	if !ok {
		return lqp.NoNode, errTranslation("translateHavingComparison", "unsupported HAVING operator")
	}

	lOrigin, lIsOperand, err := tr.havingOperand(aggID, preAggInput, b.L)
	if err != nil {
		return lqp.NoNode, err
	}
	if lIsOperand {
		if val, ok := paramValueOf(unwrapParen(b.R)); ok {
			return tr.plan.NewPredicate(current, lOrigin, scanType, val, types.Null), nil
		}
		rOrigin, rIsOperand, err := tr.havingOperand(aggID, preAggInput, b.R)
		if err != nil {
			return lqp.NoNode, err
		}
		if rIsOperand {
			return tr.plan.NewPredicate(current, lOrigin, scanType, paramColumnRef(rOrigin), types.Null), nil
		}
		return lqp.NoNode, errTranslation("translateHavingComparison", "unsupported HAVING operand")
	}

	rOrigin, rIsOperand, err := tr.havingOperand(aggID, preAggInput, b.R)
	if err != nil {
		return lqp.NoNode, err
	}
	if !rIsOperand {
		return lqp.NoNode, errTranslation("translateHavingComparison", "HAVING comparison must reference a GROUP BY column or an aggregate")
	}
	val, ok := paramValueOf(unwrapParen(b.L))
	if !ok {
		return lqp.NoNode, errTranslation("translateHavingComparison", "unsupported HAVING operand")
	}
	return tr.plan.NewPredicate(current, rOrigin, scanType.Swap(), val, types.Null), nil
}
