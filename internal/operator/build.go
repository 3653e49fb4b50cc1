package operator

import (
	"fmt"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/storage"
	"chunkdb/internal/types"
)

// Build compiles a logical plan rooted at id into a physical operator tree
// ready for Execute (spec.md §4.7 "Build(plan) walks the LQP bottom-up,
// instantiating one physical operator per node").
func Build(plan *lqp.Plan, id lqp.NodeID, mgr *storage.Manager) (Operator, error) {
	op, _, err := buildNode(plan, id, mgr)
	return op, err
}

// buildNode recursively builds id's subtree, returning the operator and its
// dense output column types (needed by the parent to type its own
// expressions and, for Insert/Update/Delete/Show, discarded).
func buildNode(plan *lqp.Plan, id lqp.NodeID, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	n := plan.Node(id)
	switch n.Kind {
	case lqp.KindStoredTable:
		return buildStoredTable(n, mgr)

	case lqp.KindDummyTable:
		return NewDummyTable(n.DummyRowCount), nil, nil

	case lqp.KindPredicate:
		return buildPredicate(plan, n, mgr)

	case lqp.KindProjection:
		return buildProjection(plan, id, n, mgr)

	case lqp.KindAggregate:
		return buildAggregate(plan, id, n, mgr)

	case lqp.KindJoin:
		return buildJoin(plan, id, n, mgr)

	case lqp.KindSort:
		return buildSort(plan, n, mgr)

	case lqp.KindLimit:
		childOp, childTypes, err := buildNode(plan, n.Left, mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewLimit(childOp, n.Limit, n.Offset), childTypes, nil

	case lqp.KindUnion:
		leftOp, leftTypes, err := buildNode(plan, n.Left, mgr)
		if err != nil {
			return nil, nil, err
		}
		rightOp, _, err := buildNode(plan, n.Right, mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewUnion(leftOp, rightOp), leftTypes, nil

	case lqp.KindValidate:
		childOp, childTypes, err := buildNode(plan, n.Left, mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewValidate(childOp), childTypes, nil

	case lqp.KindInsert:
		childOp, _, err := buildNode(plan, n.Left, mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewInsert(childOp, n.TargetTable, mgr), nil, nil

	case lqp.KindUpdate:
		return buildUpdate(plan, n, mgr)

	case lqp.KindDelete:
		childOp, _, err := buildNode(plan, n.Left, mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewDelete(childOp, n.TargetTable, mgr), nil, nil

	case lqp.KindShow:
		return NewShow(n.Show, n.ShowName, mgr), nil, nil

	default:
		return nil, nil, fmt.Errorf("operator: Build: unsupported node kind %s", n.Kind)
	}
}

func buildStoredTable(n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	t, err := mgr.GetTable(n.TableName)
	if err != nil {
		return nil, nil, err
	}
	elemTypes := make([]types.ElementType, t.ColumnCount())
	for i := range elemTypes {
		elemTypes[i] = t.ColumnType(i)
	}
	return NewStoredTable(n.TableName, t), elemTypes, nil
}

func buildPredicate(plan *lqp.Plan, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	childOp, childTypes, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	if n.SubPlan != nil {
		subRoots := n.SubPlan.Roots()
		if len(subRoots) != 1 {
			return nil, nil, fmt.Errorf("operator: EXISTS sub-plan must have exactly one root")
		}
		subOp, _, err := buildNode(n.SubPlan, subRoots[0], mgr)
		if err != nil {
			return nil, nil, err
		}
		return NewExistsScan(childOp, subOp, n.SubPlanNegate), childTypes, nil
	}

	col, err := columnIndex(plan, n.Left, n.PredicateColumn)
	if err != nil {
		return nil, nil, err
	}
	value, err := parameterToExpr(plan, n.Left, n.Value)
	if err != nil {
		return nil, nil, err
	}
	var value2 *Expression
	if n.ScanType == lqp.ScanBetween {
		value2 = expr.NewLiteral[ColumnID](n.Value2)
	}
	return NewTableScan(childOp, col, n.ScanType, value, value2), childTypes, nil
}

func buildProjection(plan *lqp.Plan, id lqp.NodeID, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	childOp, childTypes, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	exprs := make([]*Expression, len(n.Expressions))
	for i, e := range n.Expressions {
		exprs[i], err = translateExpr(plan, n.Left, e)
		if err != nil {
			return nil, nil, err
		}
	}
	elemTypes := make([]types.ElementType, len(exprs))
	for i, e := range exprs {
		elemTypes[i] = typeOf(e, childTypes)
	}
	names := plan.OutputColumnNames(id)
	return NewProjection(childOp, exprs, names, elemTypes), elemTypes, nil
}

func buildAggregate(plan *lqp.Plan, id lqp.NodeID, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	childOp, childTypes, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	groupBy := make([]ColumnID, len(n.GroupBy))
	for i, origin := range n.GroupBy {
		groupBy[i], err = columnIndex(plan, n.Left, origin)
		if err != nil {
			return nil, nil, err
		}
	}
	aggs := make([]*Expression, len(n.Expressions))
	for i, e := range n.Expressions {
		aggs[i], err = translateExpr(plan, n.Left, e)
		if err != nil {
			return nil, nil, err
		}
	}
	elemTypes := make([]types.ElementType, len(groupBy)+len(aggs))
	for i, col := range groupBy {
		elemTypes[i] = childTypes[int(col)]
	}
	for i, e := range aggs {
		elemTypes[len(groupBy)+i] = typeOf(e, childTypes)
	}
	names := plan.OutputColumnNames(id)
	return NewAggregate(childOp, groupBy, aggs, names, elemTypes), elemTypes, nil
}

func buildJoin(plan *lqp.Plan, id lqp.NodeID, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	leftOp, leftTypes, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	rightOp, rightTypes, err := buildNode(plan, n.Right, mgr)
	if err != nil {
		return nil, nil, err
	}
	elemTypes := make([]types.ElementType, 0, len(leftTypes)+len(rightTypes))
	elemTypes = append(elemTypes, leftTypes...)
	elemTypes = append(elemTypes, rightTypes...)
	names := plan.OutputColumnNames(id)

	if n.JoinMode == lqp.JoinCross {
		return NewJoin(leftOp, rightOp, n.JoinMode, 0, 0, 0, names, elemTypes), elemTypes, nil
	}
	if n.JoinMode == lqp.JoinNatural {
		return nil, nil, fmt.Errorf("operator: Build: natural joins must be rewritten to Cross+Predicate+Projection before reaching the operator layer")
	}
	leftCol, err := columnIndex(plan, n.Left, n.JoinLeftOrigin)
	if err != nil {
		return nil, nil, err
	}
	rightCol, err := columnIndex(plan, n.Right, n.JoinRightOrigin)
	if err != nil {
		return nil, nil, err
	}
	return NewJoin(leftOp, rightOp, n.JoinMode, leftCol, rightCol, n.JoinScanType, names, elemTypes), elemTypes, nil
}

func buildSort(plan *lqp.Plan, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	childOp, childTypes, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]SortKey, len(n.SortKeys))
	for i, k := range n.SortKeys {
		col, err := columnIndex(plan, n.Left, k.Column)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = SortKey{Column: col, Mode: k.Mode}
	}
	return NewSort(childOp, keys), childTypes, nil
}

// buildUpdate builds the matched-row scan (n.Left, a Validate -> Predicate*
// chain over the target) and the assignment list (n.Assignments is a full,
// width-matching list per lqp.Node's own doc comment); UpdateOp.Execute
// evaluates the assignments per matched row and merges the result back with
// the target's untouched rows.
func buildUpdate(plan *lqp.Plan, n *lqp.Node, mgr *storage.Manager) (Operator, []types.ElementType, error) {
	childOp, _, err := buildNode(plan, n.Left, mgr)
	if err != nil {
		return nil, nil, err
	}
	exprs := make([]*Expression, len(n.Assignments))
	for i, e := range n.Assignments {
		exprs[i], err = translateExpr(plan, n.Left, e)
		if err != nil {
			return nil, nil, err
		}
	}
	return NewUpdate(childOp, exprs, n.TargetTable, mgr), nil, nil
}

// columnIndex resolves a ColumnOrigin against childID's dense output column
// list (spec.md §3 "ColumnOrigin: stable identity of a column across plan
// rewrites"): pass-through nodes (Predicate, Validate, Sort, Limit, Union)
// forward the origin of the node that actually introduced the column, so
// matching on Origin rather than walking Node/Column directly works for
// any ancestor distance.
func columnIndex(plan *lqp.Plan, childID lqp.NodeID, origin lqp.ColumnOrigin) (ColumnID, error) {
	cols := plan.OutputColumns(childID)
	for i, c := range cols {
		if c.Origin == origin {
			return ColumnID(i), nil
		}
	}
	return 0, fmt.Errorf("operator: Build: column origin %+v not found in node %d's output", origin, childID)
}

// parameterToExpr lowers a Predicate node's ParameterValue (typed value,
// column reference, or placeholder — spec.md §3) into an operator
// Expression.
func parameterToExpr(plan *lqp.Plan, childID lqp.NodeID, pv types.ParameterValue) (*Expression, error) {
	switch pv.Kind {
	case types.ParamValue:
		return expr.NewLiteral[ColumnID](pv.Value), nil
	case types.ParamColumnReference:
		origin, ok := pv.ColumnRef.(lqp.ColumnOrigin)
		if !ok {
			return nil, fmt.Errorf("operator: Predicate column reference has unexpected type %T", pv.ColumnRef)
		}
		col, err := columnIndex(plan, childID, origin)
		if err != nil {
			return nil, err
		}
		return expr.NewColumn[ColumnID](col), nil
	case types.ParamPlaceholder:
		return expr.NewPlaceholder[ColumnID](pv.PlaceholderID), nil
	default:
		return nil, fmt.Errorf("operator: Build: unknown parameter kind %d", pv.Kind)
	}
}

// translateExpr lowers an LQP expression tree (Expression[lqp.ColumnOrigin])
// into an operator expression tree (Expression[operator.ColumnID]),
// resolving every column leaf against childID's output schema. Comparison
// and Logical nodes never appear here: the translator always lowers boolean
// connectives into Predicate/Union node structure before an Expression
// reaches Projection or Aggregate (spec.md §4.6).
func translateExpr(plan *lqp.Plan, childID lqp.NodeID, e *lqp.Expression) (*Expression, error) {
	switch e.Kind {
	case expr.KindLiteral:
		return expr.NewLiteral[ColumnID](e.Literal), nil
	case expr.KindColumn:
		col, err := columnIndex(plan, childID, e.Column)
		if err != nil {
			return nil, err
		}
		return expr.NewColumn[ColumnID](col), nil
	case expr.KindStar:
		return expr.NewStar[ColumnID](), nil
	case expr.KindPlaceholder:
		return expr.NewPlaceholder[ColumnID](e.PlaceholderID), nil
	case expr.KindArithmetic:
		left, err := translateExpr(plan, childID, e.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := translateExpr(plan, childID, e.Children[1])
		if err != nil {
			return nil, err
		}
		return expr.NewArithmetic[ColumnID](e.Arithmetic, left, right), nil
	case expr.KindFunction:
		args := make([]*Expression, len(e.Children))
		for i, c := range e.Children {
			a, err := translateExpr(plan, childID, c)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return expr.NewFunction[ColumnID](e.Aggregate, args...), nil
	default:
		return nil, fmt.Errorf("operator: Build: expression kind %d cannot be lowered to a physical expression", e.Kind)
	}
}
