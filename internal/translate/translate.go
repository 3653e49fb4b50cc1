// Package translate turns a TiDB parser AST into a logical query plan
// (C6), per spec.md §4.6. The translator is stateful only in one flag:
// whether stored-table reads are wrapped in a Validate node, matching
// spec.md §3's "The translator is stateful only in `_validate`".
package translate

import (
	"github.com/pingcap/tidb/pkg/parser/ast"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/storage"
	"chunkdb/internal/types"
)

// translator carries the plan under construction and the storage manager
// StoredTable nodes resolve against.
type translator struct {
	plan     *lqp.Plan
	storage  *storage.Manager
	validate bool
}

// Translate builds a logical query plan for a single statement. Supported
// statement kinds: Select, Insert, Update, Delete, Show (spec.md §4.6).
// Any other statement kind — including set operations (UNION et al.),
// which spec.md §4.6 step 4 explicitly rejects — is a translation error.
func Translate(stmt ast.StmtNode, mgr *storage.Manager) (*lqp.Plan, lqp.NodeID, error) {
	tr := &translator{plan: lqp.NewPlan(), storage: mgr}

	var (
		root lqp.NodeID
		err  error
	)
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		root, err = tr.translateSelect(s)
	case *ast.InsertStmt:
		root, err = tr.translateInsert(s)
	case *ast.UpdateStmt:
		tr.validate = true
		root, err = tr.translateUpdate(s)
	case *ast.DeleteStmt:
		tr.validate = true
		root, err = tr.translateDelete(s)
	case *ast.ShowStmt:
		root, err = tr.translateShow(s)
	default:
		return nil, lqp.NoNode, errTranslation("Translate", "unsupported statement type %T", stmt)
	}
	if err != nil {
		return nil, lqp.NoNode, err
	}
	tr.plan.AddRoot(root)
	return tr.plan, root, nil
}

// translateTableRef resolves a FROM clause: a plain table name
// (StoredTable, optionally Validate-wrapped), a derived table (recursive
// SELECT), or a join (spec.md §4.6 step 1).
func (tr *translator) translateTableRef(refs *ast.TableRefsClause) (lqp.NodeID, error) {
	if refs == nil || refs.TableRefs == nil {
		return tr.plan.NewDummyTable(1), nil
	}
	return tr.translateResultSetNode(refs.TableRefs)
}

func (tr *translator) translateResultSetNode(node ast.ResultSetNode) (lqp.NodeID, error) {
	switch n := node.(type) {
	case *ast.TableSource:
		return tr.translateTableSource(n)
	case *ast.TableName:
		return tr.translateStoredTable(n)
	case *ast.Join:
		return tr.translateJoin(n)
	case *ast.SelectStmt:
		return tr.translateSelect(n)
	default:
		return lqp.NoNode, errTranslation("translateResultSetNode", "unsupported FROM source %T", node)
	}
}

func (tr *translator) translateTableSource(src *ast.TableSource) (lqp.NodeID, error) {
	return tr.translateResultSetNode(src.Source)
}

func (tr *translator) translateStoredTable(name *ast.TableName) (lqp.NodeID, error) {
	tableName := name.Name.O
	tbl, err := tr.storage.GetTable(tableName)
	if err != nil {
		return lqp.NoNode, wrapTranslation("translateStoredTable", err)
	}
	id := tr.plan.NewStoredTable(tableName, tbl.ColumnNames())
	tr.plan.SetStats(id, tbl.Statistics())
	if tr.validate {
		id = tr.plan.NewValidate(id)
	}
	return id, nil
}

// translateJoin handles explicit joins, NATURAL JOIN, and left-associative
// cross products (spec.md §4.6 step 1, and the NATURAL JOIN supplement in
// spec.md §4.6).
func (tr *translator) translateJoin(j *ast.Join) (lqp.NodeID, error) {
	if j.Right == nil {
		return tr.translateResultSetNode(j.Left)
	}
	left, err := tr.translateResultSetNode(j.Left)
	if err != nil {
		return lqp.NoNode, err
	}
	right, err := tr.translateResultSetNode(j.Right)
	if err != nil {
		return lqp.NoNode, err
	}

	if j.NaturalJoin {
		return tr.translateNaturalJoin(left, right)
	}

	mode := joinModeOf(j)
	if j.On == nil {
		return tr.plan.NewJoin(left, right, mode, lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, lqp.ScanEq), nil
	}

	leftOrigin, rightOrigin, scanType, err := tr.translateJoinCondition(left, right, j.On.Expr)
	if err != nil {
		return lqp.NoNode, err
	}
	return tr.plan.NewJoin(left, right, mode, leftOrigin, rightOrigin, scanType), nil
}

func joinModeOf(j *ast.Join) lqp.JoinMode {
	if j.On == nil && !j.NaturalJoin {
		return lqp.JoinCross
	}
	switch j.Tp {
	case ast.LeftJoin:
		return lqp.JoinLeft
	case ast.RightJoin:
		return lqp.JoinRight
	default:
		return lqp.JoinInner
	}
}

// translateJoinCondition requires the join condition to be a simple
// comparison between two column refs, each resolving to exactly one side
// (spec.md §4.6 "Join translation").
func (tr *translator) translateJoinCondition(left, right lqp.NodeID, cond ast.ExprNode) (lqp.ColumnOrigin, lqp.ColumnOrigin, lqp.ScanType, error) {
	bin, ok := unwrapParen(cond).(*ast.BinaryOperationExpr)
	if !ok {
		return lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, 0, errTranslation("translateJoinCondition", "join condition must be a simple comparison")
	}
	scanType, ok := scanTypeOf(bin.Op)
	if !ok {
		return lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, 0, errTranslation("translateJoinCondition", "unsupported join operator")
	}

	lCol, lIsLeft, err := tr.resolveJoinSide(left, right, bin.L)
	if err != nil {
		return lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, 0, err
	}
	rCol, rIsLeft, err := tr.resolveJoinSide(left, right, bin.R)
	if err != nil {
		return lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, 0, err
	}
	if lIsLeft == rIsLeft {
		return lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, 0, errTranslation("translateJoinCondition", "join condition operands must resolve one to each side")
	}
	if lIsLeft {
		return lCol, rCol, scanType, nil
	}
	return rCol, lCol, scanType.Swap(), nil
}

// resolveJoinSide resolves a column expression against exactly one of
// left/right, returning (origin, isLeftSide).
func (tr *translator) resolveJoinSide(left, right lqp.NodeID, e ast.ExprNode) (lqp.ColumnOrigin, bool, error) {
	name, prefix, ok := columnNameOf(unwrapParen(e))
	if !ok {
		return lqp.ColumnOrigin{}, false, errTranslation("resolveJoinSide", "join operand must be a column reference")
	}
	if origin, err := tr.plan.FindColumnOriginByName(left, name, prefix); err == nil {
		if _, rerr := tr.plan.FindColumnOriginByName(right, name, prefix); rerr == nil {
			return lqp.ColumnOrigin{}, false, errTranslation("resolveJoinSide", "column %q is ambiguous between join sides", name)
		}
		return origin, true, nil
	}
	origin, err := tr.plan.FindColumnOriginByName(right, name, prefix)
	if err != nil {
		return lqp.ColumnOrigin{}, false, wrapTranslation("resolveJoinSide", err)
	}
	return origin, false, nil
}

// translateNaturalJoin builds Cross -> Predicate(shared-name equalities)
// -> Projection(dedup) per spec.md §4.6.
func (tr *translator) translateNaturalJoin(left, right lqp.NodeID) (lqp.NodeID, error) {
	leftCols := tr.plan.OutputColumns(left)
	rightCols := tr.plan.OutputColumns(right)

	leftByName := make(map[string]lqp.ColumnOrigin, len(leftCols))
	for _, c := range leftCols {
		leftByName[c.Name] = c.Origin
	}

	cross := tr.plan.NewJoin(left, right, lqp.JoinCross, lqp.ColumnOrigin{}, lqp.ColumnOrigin{}, lqp.ScanEq)

	var shared []string
	for _, c := range rightCols {
		if _, ok := leftByName[c.Name]; ok {
			shared = append(shared, c.Name)
		}
	}
	if len(shared) == 0 {
		return lqp.NoNode, errTranslation("translateNaturalJoin", "no shared column names between join sides")
	}

	current := cross
	for _, name := range shared {
		lOrigin := leftByName[name]
		rOrigin, err := tr.plan.FindColumnOriginByName(right, name, "")
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateNaturalJoin", err)
		}
		current = tr.plan.NewPredicate(current, lOrigin, lqp.ScanEq, paramColumnRef(rOrigin), types.Null)
	}

	sharedSet := make(map[string]bool, len(shared))
	for _, name := range shared {
		sharedSet[name] = true
	}
	seenSharedRight := make(map[string]bool, len(shared))
	var exprs []*lqp.Expression
	for _, c := range tr.plan.OutputColumns(current) {
		if sharedSet[c.Name] {
			// drop the right-side duplicate; keep the left-side one only
			isLeftSide := leftByName[c.Name] == c.Origin
			if !isLeftSide {
				if seenSharedRight[c.Name] {
					continue
				}
				seenSharedRight[c.Name] = true
				continue
			}
		}
		exprs = append(exprs, expr.NewColumn(c.Origin).WithAlias(c.Name))
	}
	return tr.plan.NewProjection(current, exprs), nil
}

// translateSelect applies, in order, every pipeline stage spec.md §4.6
// names that is present on the statement: FROM, WHERE, aggregation (or a
// plain projection), ORDER BY, LIMIT.
func (tr *translator) translateSelect(sel *ast.SelectStmt) (lqp.NodeID, error) {
	from, err := tr.translateTableRef(sel.From)
	if err != nil {
		return lqp.NoNode, err
	}

	filtered, err := tr.translateWhere(from, sel.Where)
	if err != nil {
		return lqp.NoNode, err
	}

	var body lqp.NodeID
	if isAggregating(sel) {
		body, err = tr.translateAggregate(filtered, sel)
	} else {
		body, err = tr.translateProjection(filtered, sel.Fields)
	}
	if err != nil {
		return lqp.NoNode, err
	}

	sorted, err := tr.translateOrderBy(body, sel.OrderBy)
	if err != nil {
		return lqp.NoNode, err
	}
	return tr.translateLimit(sorted, sel.Limit)
}

// isAggregating reports whether a SELECT carries a GROUP BY or any
// aggregate function in its select list (spec.md §4.6 "Aggregation
// decision").
func isAggregating(sel *ast.SelectStmt) bool {
	if sel.GroupBy != nil && len(sel.GroupBy.Items) > 0 {
		return true
	}
	if sel.Fields == nil {
		return false
	}
	for _, f := range sel.Fields.Fields {
		if containsAggregateFunc(f.Expr) {
			return true
		}
	}
	return false
}

func containsAggregateFunc(e ast.ExprNode) bool {
	switch x := e.(type) {
	case nil:
		return false
	case *ast.AggregateFuncExpr:
		return true
	case *ast.BinaryOperationExpr:
		return containsAggregateFunc(x.L) || containsAggregateFunc(x.R)
	case *ast.ParenthesesExpr:
		return containsAggregateFunc(x.Expr)
	default:
		return false
	}
}

// translateOrderBy applies an ORDER BY clause (spec.md §4.6 step 5).
func (tr *translator) translateOrderBy(input lqp.NodeID, ob *ast.OrderByClause) (lqp.NodeID, error) {
	if ob == nil || len(ob.Items) == 0 {
		return input, nil
	}
	keys := make([]lqp.SortKey, 0, len(ob.Items))
	for _, item := range ob.Items {
		name, prefix, ok := columnNameOf(unwrapParen(item.Expr))
		if !ok {
			return lqp.NoNode, errTranslation("translateOrderBy", "ORDER BY item must be a column reference")
		}
		origin, err := tr.plan.FindColumnOriginByName(input, name, prefix)
		if err != nil {
			return lqp.NoNode, wrapTranslation("translateOrderBy", err)
		}
		mode := lqp.SortAscending
		if item.Desc {
			mode = lqp.SortDescending
		}
		keys = append(keys, lqp.SortKey{Column: origin, Mode: mode})
	}
	return tr.plan.NewSort(input, keys), nil
}

// translateLimit applies a LIMIT [OFFSET] clause (spec.md §4.6 step 6;
// the OFFSET half is SPEC_FULL.md §6.4's supplement from
// _examples/original_source).
func (tr *translator) translateLimit(input lqp.NodeID, l *ast.Limit) (lqp.NodeID, error) {
	if l == nil {
		return input, nil
	}
	count, err := limitExprToInt64(l.Count)
	if err != nil {
		return lqp.NoNode, err
	}
	var offset int64
	if l.Offset != nil {
		offset, err = limitExprToInt64(l.Offset)
		if err != nil {
			return lqp.NoNode, err
		}
	}
	return tr.plan.NewLimit(input, count, offset), nil
}

func limitExprToInt64(e ast.ExprNode) (int64, error) {
	v, ok := literalValue(e)
	if !ok || v.IsNull() {
		return 0, errTranslation("limitExprToInt64", "LIMIT/OFFSET must be a literal integer")
	}
	return v.AsInt64(), nil
}
