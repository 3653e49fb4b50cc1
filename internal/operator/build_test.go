package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/expr"
	"chunkdb/internal/lqp"
	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

func newOrdersTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]string{"id", "total"}, []types.ElementType{types.Int32, types.Int32}, 0, table.Data)
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(1), types.NewInt32(100)}))
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(2), types.NewInt32(50)}))
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(3), types.NewInt32(200)}))
	return tbl
}

func newManager(t *testing.T, name string, tbl *table.Table) *storage.Manager {
	t.Helper()
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable(name, tbl))
	return mgr
}

func run(t *testing.T, op Operator) *table.Table {
	t.Helper()
	out, err := op.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)
	return out
}

func TestBuildStoredTableAndPredicate(t *testing.T) {
	mgr := newManager(t, "orders", newOrdersTable(t))

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	idOrigin := lqp.ColumnOrigin{Node: st, Column: 1}
	pred := plan.NewPredicate(st, idOrigin, lqp.ScanGt, types.NewParamValue(types.NewInt32(60)), types.Null)
	plan.AddRoot(pred)

	op, err := Build(plan, pred, mgr)
	require.NoError(t, err)

	out := run(t, op)
	assert.Equal(t, 2, out.RowCount())
}

func TestBuildProjectionWithArithmetic(t *testing.T) {
	mgr := newManager(t, "orders", newOrdersTable(t))

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	totalOrigin := lqp.ColumnOrigin{Node: st, Column: 1}
	proj := plan.NewProjection(st, []*lqp.Expression{
		expr.NewArithmetic(expr.Mul, expr.NewColumn[lqp.ColumnOrigin](totalOrigin), expr.NewLiteral[lqp.ColumnOrigin](types.NewInt32(2))).WithAlias("doubled"),
	})
	plan.AddRoot(proj)

	op, err := Build(plan, proj, mgr)
	require.NoError(t, err)

	out := run(t, op)
	require.Equal(t, 3, out.RowCount())
	assert.Equal(t, int64(200), out.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: 0}).Int64())
}

func TestBuildAggregateSum(t *testing.T) {
	mgr := newManager(t, "orders", newOrdersTable(t))

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	totalOrigin := lqp.ColumnOrigin{Node: st, Column: 1}
	agg := plan.NewAggregate(st, []*lqp.Expression{
		expr.NewFunction(expr.Sum, expr.NewColumn[lqp.ColumnOrigin](totalOrigin)),
	}, nil)
	plan.AddRoot(agg)

	op, err := Build(plan, agg, mgr)
	require.NoError(t, err)

	out := run(t, op)
	require.Equal(t, 1, out.RowCount())
	assert.Equal(t, int64(350), out.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: 0}).Int64())
}

func TestBuildJoinInner(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("orders", newOrdersTable(t)))
	customers, err := table.New([]string{"cust_id", "name"}, []types.ElementType{types.Int32, types.String}, 0, table.Data)
	require.NoError(t, err)
	require.NoError(t, customers.AppendRow([]types.Value{types.NewInt32(1), types.NewString("alice")}))
	require.NoError(t, customers.AppendRow([]types.Value{types.NewInt32(4), types.NewString("ghost")}))
	require.NoError(t, mgr.AddTable("customers", customers))

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	ct := plan.NewStoredTable("customers", []string{"cust_id", "name"})
	join := plan.NewJoin(st, ct, lqp.JoinInner,
		lqp.ColumnOrigin{Node: st, Column: 0}, lqp.ColumnOrigin{Node: ct, Column: 0}, lqp.ScanEq)
	plan.AddRoot(join)

	op, err := Build(plan, join, mgr)
	require.NoError(t, err)

	out := run(t, op)
	assert.Equal(t, 1, out.RowCount())
}

func TestBuildJoinLeftFillsNullOnUnmatchedRight(t *testing.T) {
	mgr := storage.NewManager()
	require.NoError(t, mgr.AddTable("orders", newOrdersTable(t)))
	customers, err := table.New([]string{"cust_id", "name"}, []types.ElementType{types.Int32, types.String}, 0, table.Data)
	require.NoError(t, err)
	require.NoError(t, customers.AppendRow([]types.Value{types.NewInt32(1), types.NewString("alice")}))
	require.NoError(t, mgr.AddTable("customers", customers))

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	ct := plan.NewStoredTable("customers", []string{"cust_id", "name"})
	join := plan.NewJoin(st, ct, lqp.JoinLeft,
		lqp.ColumnOrigin{Node: st, Column: 0}, lqp.ColumnOrigin{Node: ct, Column: 0}, lqp.ScanEq)
	plan.AddRoot(join)

	op, err := Build(plan, join, mgr)
	require.NoError(t, err)

	out := run(t, op)
	assert.Equal(t, 3, out.RowCount())

	var sawNullName bool
	for r := 0; r < out.RowCount(); r++ {
		row := types.RowID{ChunkIndex: 0, Offset: uint32(r)}
		if out.ValueAt(3, row).IsNull() {
			sawNullName = true
		}
	}
	assert.True(t, sawNullName)
}

func TestBuildInsertAppendsRows(t *testing.T) {
	tbl := newOrdersTable(t)
	mgr := newManager(t, "orders", tbl)

	plan := lqp.NewPlan()
	dummy := plan.NewDummyTable(1)
	proj := plan.NewProjection(dummy, []*lqp.Expression{
		expr.NewLiteral[lqp.ColumnOrigin](types.NewInt32(4)),
		expr.NewLiteral[lqp.ColumnOrigin](types.NewInt32(999)),
	})
	ins := plan.NewInsert(proj, "orders")
	plan.AddRoot(ins)

	op, err := Build(plan, ins, mgr)
	require.NoError(t, err)

	_, err = op.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)

	got, err := mgr.GetTable("orders")
	require.NoError(t, err)
	assert.Equal(t, 4, got.RowCount())
}

func TestBuildDeleteRemovesMatchingRows(t *testing.T) {
	tbl := newOrdersTable(t)
	mgr := newManager(t, "orders", tbl)

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	validate := plan.NewValidate(st)
	idOrigin := lqp.ColumnOrigin{Node: st, Column: 0}
	// matched mirrors what translateDelete actually builds: the rows WHERE
	// selects for removal, not the rows that should survive.
	matched := plan.NewPredicate(validate, idOrigin, lqp.ScanEq, types.NewParamValue(types.NewInt32(2)), types.Null)
	del := plan.NewDelete(matched, "orders")
	plan.AddRoot(del)

	op, err := Build(plan, del, mgr)
	require.NoError(t, err)

	_, err = op.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)

	got, err := mgr.GetTable("orders")
	require.NoError(t, err)
	require.Equal(t, 2, got.RowCount())
	var survivingIDs []int32
	for r := 0; r < got.RowCount(); r++ {
		survivingIDs = append(survivingIDs, got.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: uint32(r)}).Int32())
	}
	assert.ElementsMatch(t, []int32{1, 3}, survivingIDs)
}

func TestBuildUpdateMergesMatchedAndUntouchedRows(t *testing.T) {
	tbl := newOrdersTable(t)
	mgr := newManager(t, "orders", tbl)

	plan := lqp.NewPlan()
	st := plan.NewStoredTable("orders", []string{"id", "total"})
	validate := plan.NewValidate(st)
	idOrigin := lqp.ColumnOrigin{Node: st, Column: 0}
	matched := plan.NewPredicate(validate, idOrigin, lqp.ScanEq, types.NewParamValue(types.NewInt32(1)), types.Null)
	assignments := []*lqp.Expression{
		expr.NewColumn[lqp.ColumnOrigin](idOrigin),
		expr.NewLiteral[lqp.ColumnOrigin](types.NewInt32(999)),
	}
	upd := plan.NewUpdate(matched, "orders", assignments)
	plan.AddRoot(upd)

	op, err := Build(plan, upd, mgr)
	require.NoError(t, err)

	_, err = op.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)

	got, err := mgr.GetTable("orders")
	require.NoError(t, err)
	require.Equal(t, 3, got.RowCount())
	totals := make(map[int32]int32, got.RowCount())
	for r := 0; r < got.RowCount(); r++ {
		row := types.RowID{ChunkIndex: 0, Offset: uint32(r)}
		totals[got.ValueAt(0, row).Int32()] = got.ValueAt(1, row).Int32()
	}
	assert.Equal(t, int32(999), totals[1])
	assert.Equal(t, int32(50), totals[2])
	assert.Equal(t, int32(200), totals[3])
}

func TestBuildShowTables(t *testing.T) {
	mgr := newManager(t, "orders", newOrdersTable(t))

	plan := lqp.NewPlan()
	show := plan.NewShow(lqp.ShowTables, "")
	plan.AddRoot(show)

	op, err := Build(plan, show, mgr)
	require.NoError(t, err)

	out := run(t, op)
	require.Equal(t, 1, out.RowCount())
	assert.Equal(t, "orders", out.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: 0}).Str())
}
