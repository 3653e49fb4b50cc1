package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"

	"chunkdb/internal/lqp"
	"chunkdb/internal/types"
)

// translateWhere applies a WHERE clause, or returns input unchanged when
// there is none.
func (tr *translator) translateWhere(input lqp.NodeID, where ast.ExprNode) (lqp.NodeID, error) {
	if where == nil {
		return input, nil
	}
	return tr.translateCondition(input, where)
}

// translateCondition recursively splits AND into a chain of scans and OR
// into a Union of two independently-filtered branches over the same input
// (spec.md §4.6 "Predicate translation"). Anything else is a single
// predicate.
func (tr *translator) translateCondition(input lqp.NodeID, e ast.ExprNode) (lqp.NodeID, error) {
	e = unwrapParen(e)
	if bin, ok := e.(*ast.BinaryOperationExpr); ok {
		switch bin.Op {
		case opcode.LogicAnd:
			left, err := tr.translateCondition(input, bin.L)
			if err != nil {
				return lqp.NoNode, err
			}
			return tr.translateCondition(left, bin.R)
		case opcode.LogicOr:
			left, err := tr.translateCondition(input, bin.L)
			if err != nil {
				return lqp.NoNode, err
			}
			right, err := tr.translateCondition(input, bin.R)
			if err != nil {
				return lqp.NoNode, err
			}
			return tr.plan.NewUnion(left, right), nil
		}
	}
	return tr.translatePredicate(input, e)
}

func (tr *translator) translatePredicate(input lqp.NodeID, e ast.ExprNode) (lqp.NodeID, error) {
	switch x := unwrapParen(e).(type) {
	case *ast.BetweenExpr:
		return tr.translateBetween(input, x)
	case *ast.PatternLikeOrIlikeExpr:
		return tr.translateLike(input, x)
	case *ast.ExistsSubqueryExpr:
		return tr.translateExists(input, x)
	case *ast.PatternInExpr:
		return tr.translateIn(input, x)
	case *ast.BinaryOperationExpr:
		return tr.translateComparison(input, x)
	default:
		return lqp.NoNode, errTranslation("translatePredicate", "unsupported predicate expression %T", e)
	}
}

// translateBetween maps directly onto a single ScanBetween scan (spec.md
// §4.5 "Predicate"). NOT BETWEEN has no single scan type, so it is
// rewritten into (x < lo) OR (x > hi).
func (tr *translator) translateBetween(input lqp.NodeID, b *ast.BetweenExpr) (lqp.NodeID, error) {
	name, prefix, ok := columnNameOf(unwrapParen(b.Expr))
	if !ok {
		return lqp.NoNode, errTranslation("translateBetween", "BETWEEN operand must be a column reference")
	}
	origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateBetween", err)
	}
	lo, ok := literalValue(b.Left)
	if !ok {
		return lqp.NoNode, errTranslation("translateBetween", "BETWEEN bounds must be literals")
	}
	hi, ok := literalValue(b.Right)
	if !ok {
		return lqp.NoNode, errTranslation("translateBetween", "BETWEEN bounds must be literals")
	}
	if !b.Not {
		return tr.plan.NewPredicate(input, origin, lqp.ScanBetween, types.NewParamValue(lo), hi), nil
	}
	below := tr.plan.NewPredicate(input, origin, lqp.ScanLt, types.NewParamValue(lo), types.Null)
	above := tr.plan.NewPredicate(input, origin, lqp.ScanGt, types.NewParamValue(hi), types.Null)
	return tr.plan.NewUnion(below, above), nil
}

func (tr *translator) translateLike(input lqp.NodeID, l *ast.PatternLikeOrIlikeExpr) (lqp.NodeID, error) {
	name, prefix, ok := columnNameOf(unwrapParen(l.Expr))
	if !ok {
		return lqp.NoNode, errTranslation("translateLike", "LIKE operand must be a column reference")
	}
	origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateLike", err)
	}
	pattern, ok := literalValue(l.Pattern)
	if !ok {
		return lqp.NoNode, errTranslation("translateLike", "LIKE pattern must be a literal")
	}
	scanType := lqp.ScanLike
	if l.Not {
		scanType = lqp.ScanNotLike
	}
	return tr.plan.NewPredicate(input, origin, scanType, types.NewParamValue(pattern), types.Null), nil
}

// translateExists builds an independent sub-plan for the EXISTS/NOT EXISTS
// subquery and wraps it as a semi-join Predicate (SPEC_FULL.md's
// supplement to spec.md §4.4's Exists expression kind).
func (tr *translator) translateExists(input lqp.NodeID, ex *ast.ExistsSubqueryExpr) (lqp.NodeID, error) {
	sub, ok := ex.Sel.(*ast.SubqueryExpr)
	if !ok {
		return lqp.NoNode, errTranslation("translateExists", "EXISTS requires a subquery")
	}
	selStmt, ok := sub.Query.(*ast.SelectStmt)
	if !ok {
		return lqp.NoNode, errTranslation("translateExists", "EXISTS subquery must be a SELECT")
	}
	subTr := &translator{plan: lqp.NewPlan(), storage: tr.storage, validate: tr.validate}
	subRoot, err := subTr.translateSelect(selStmt)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateExists", err)
	}
	subTr.plan.AddRoot(subRoot)
	return tr.plan.NewExistsPredicate(input, subTr.plan, ex.Not), nil
}

// translateIn rewrites `col IN (v1, v2, ...)` as an OR-chain of equality
// scans, and `col NOT IN (...)` as an AND-chain of inequality scans
// (SPEC_FULL.md supplement; IN has no dedicated scan type).
func (tr *translator) translateIn(input lqp.NodeID, x *ast.PatternInExpr) (lqp.NodeID, error) {
	if x.Sel != nil {
		return lqp.NoNode, errTranslation("translateIn", "IN with a subquery is not supported")
	}
	name, prefix, ok := columnNameOf(unwrapParen(x.Expr))
	if !ok {
		return lqp.NoNode, errTranslation("translateIn", "IN operand must be a column reference")
	}
	origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateIn", err)
	}
	if len(x.List) == 0 {
		return lqp.NoNode, errTranslation("translateIn", "IN list must not be empty")
	}

	if !x.Not {
		var current lqp.NodeID
		for i, item := range x.List {
			v, ok := literalValue(item)
			if !ok {
				return lqp.NoNode, errTranslation("translateIn", "IN list items must be literals")
			}
			p := tr.plan.NewPredicate(input, origin, lqp.ScanEq, types.NewParamValue(v), types.Null)
			if i == 0 {
				current = p
			} else {
				current = tr.plan.NewUnion(current, p)
			}
		}
		return current, nil
	}

	current := input
	for _, item := range x.List {
		v, ok := literalValue(item)
		if !ok {
			return lqp.NoNode, errTranslation("translateIn", "IN list items must be literals")
		}
		current = tr.plan.NewPredicate(current, origin, lqp.ScanNe, types.NewParamValue(v), types.Null)
	}
	return current, nil
}

// translateComparison handles a plain binary comparison, resolving which
// side (if either) is a column and normalizing "literal <op> column" into
// "column <op> literal" by swapping the scan type (spec.md §4.6 scenario
// "WHERE 5 > a").
func (tr *translator) translateComparison(input lqp.NodeID, b *ast.BinaryOperationExpr) (lqp.NodeID, error) {
	scanType, ok := scanTypeOf(b.Op)
	if !ok {
		return lqp.NoNode, errTranslation("translateComparison", "unsupported predicate operator")
	}

	lName, lPrefix, lIsCol := columnNameOf(unwrapParen(b.L))
	rName, rPrefix, rIsCol := columnNameOf(unwrapParen(b.R))

	switch {
	case lIsCol && rIsCol:
		lOrigin, err := tr.plan.FindColumnOriginByName(input, lName, lPrefix)
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateComparison", err)
		}
		rOrigin, err := tr.plan.FindColumnOriginByName(input, rName, rPrefix)
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateComparison", err)
		}
		return tr.plan.NewPredicate(input, lOrigin, scanType, paramColumnRef(rOrigin), types.Null), nil

	case lIsCol:
		origin, err := tr.plan.FindColumnOriginByName(input, lName, lPrefix)
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateComparison", err)
		}
		val, ok := paramValueOf(unwrapParen(b.R))
		if !ok {
			return lqp.NoNode, errTranslation("translateComparison", "unsupported comparison operand")
		}
		return tr.plan.NewPredicate(input, origin, scanType, val, types.Null), nil

	case rIsCol:
		origin, err := tr.plan.FindColumnOriginByName(input, rName, rPrefix)
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateComparison", err)
		}
		val, ok := paramValueOf(unwrapParen(b.L))
		if !ok {
			return lqp.NoNode, errTranslation("translateComparison", "unsupported comparison operand")
		}
		return tr.plan.NewPredicate(input, origin, scanType.Swap(), val, types.Null), nil

	default:
		return lqp.NoNode, errTranslation("translateComparison", "comparison must reference at least one column")
	}
}
