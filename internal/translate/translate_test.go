package translate_test

import (
	"testing"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/translate"
	"chunkdb/internal/types"
)

func mustParse(t *testing.T, sql string) ast.StmtNode {
	t.Helper()
	stmts, _, err := parser.New().Parse(sql, "", "")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func newTable(t *testing.T, names []string, types_ []types.ElementType) *table.Table {
	t.Helper()
	tbl, err := table.New(names, types_, 0, table.Data)
	require.NoError(t, err)
	return tbl
}

// SELECT a FROM t WHERE 5 > a must translate to a Predicate over column a
// with the operator swapped to `<` (spec.md §4.6's worked example).
func TestTranslateComparisonSwap(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("t", newTable(t, []string{"a", "b"}, []types.ElementType{types.Int64, types.Int64})))

	stmt := mustParse(t, "SELECT a FROM t WHERE 5 > a")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)

	require.Equal(t, lqp.KindProjection, plan.Node(root).Kind)
	predID := plan.Node(root).Left
	require.Equal(t, lqp.KindPredicate, plan.Node(predID).Kind)

	predNode := plan.Node(predID)
	require.Equal(t, lqp.ScanLt, predNode.ScanType)
	require.Equal(t, types.ParamValue, predNode.Value.Kind)
	require.Equal(t, int64(5), predNode.Value.Value.AsInt64())

	tableID := plan.Node(predID).Left
	require.Equal(t, lqp.KindStoredTable, plan.Node(tableID).Kind)
	require.Equal(t, predNode.PredicateColumn, lqp.ColumnOrigin{Node: tableID, Column: 0})
}

// NATURAL JOIN between T1(a,b) and T2(b,c) must equate the shared column
// `b` and expose a,b,c with no duplicate.
func TestTranslateNaturalJoin(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("t1", newTable(t, []string{"a", "b"}, []types.ElementType{types.Int64, types.Int64})))
	require.NoError(t, mgr.AddTable("t2", newTable(t, []string{"b", "c"}, []types.ElementType{types.Int64, types.Int64})))

	stmt := mustParse(t, "SELECT * FROM t1 NATURAL JOIN t2")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)

	names := plan.OutputColumnNames(root)
	require.Equal(t, []string{"a", "b", "c"}, names)
}

// A HAVING clause referencing an aggregate absent from the SELECT list is
// appended to the aggregate expression list but hidden from the final
// projection (spec.md §4.6).
func TestTranslateHavingNewAggregate(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("t", newTable(t, []string{"a", "b"}, []types.ElementType{types.Int64, types.Int64})))

	stmt := mustParse(t, "SELECT a, SUM(b) FROM t GROUP BY a HAVING AVG(b) > 0")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)

	require.Equal(t, []string{"a", "SUM(b)"}, plan.OutputColumnNames(root))

	predID := plan.Node(root).Left
	require.Equal(t, lqp.KindPredicate, plan.Node(predID).Kind)

	aggID := plan.Node(predID).Left
	aggNode := plan.Node(aggID)
	require.Equal(t, lqp.KindAggregate, aggNode.Kind)
	require.Len(t, aggNode.Expressions, 2)
	require.Equal(t, expr.Sum, aggNode.Expressions[0].Aggregate)
	require.Equal(t, expr.Avg, aggNode.Expressions[1].Aggregate)
}

// A plain INSERT ... VALUES builds a single-row literal source; a second
// VALUES row is rejected (DESIGN.md's documented scoping decision).
func TestTranslateInsertValues(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("t", newTable(t, []string{"a", "b"}, []types.ElementType{types.Int64, types.Int64})))

	stmt := mustParse(t, "INSERT INTO t (a, b) VALUES (1, 2)")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)
	require.Equal(t, lqp.KindInsert, plan.Node(root).Kind)

	_, _, err = translate.Translate(mustParse(t, "INSERT INTO t (a, b) VALUES (1, 2), (3, 4)"), mgr)
	require.Error(t, err)
}

// DELETE always wraps its StoredTable read in Validate before applying the
// WHERE predicate chain.
func TestTranslateDelete(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("t", newTable(t, []string{"a"}, []types.ElementType{types.Int64})))

	stmt := mustParse(t, "DELETE FROM t WHERE a = 1")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)
	require.Equal(t, lqp.KindDelete, plan.Node(root).Kind)

	predID := plan.Node(root).Left
	require.Equal(t, lqp.KindPredicate, plan.Node(predID).Kind)
	validateID := plan.Node(predID).Left
	require.Equal(t, lqp.KindValidate, plan.Node(validateID).Kind)
}

func TestTranslateShowTables(t *testing.T) {
	mgr := storage.NewManager()
	stmt := mustParse(t, "SHOW TABLES")
	plan, root, err := translate.Translate(stmt, mgr)
	require.NoError(t, err)
	require.Equal(t, lqp.KindShow, plan.Node(root).Kind)
	require.Equal(t, lqp.ShowTables, plan.Node(root).Show)
}
