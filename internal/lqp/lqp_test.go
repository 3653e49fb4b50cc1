package lqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/expr"
	"chunkdb/internal/types"
)

func TestStoredTableOutputColumns(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"id", "total"})

	cols := p.OutputColumns(st)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "orders", cols[0].Qualifier)
	assert.Equal(t, ColumnOrigin{Node: st, Column: 0}, cols[0].Origin)
	assert.Equal(t, ColumnOrigin{Node: st, Column: 1}, cols[1].Origin)
}

func TestPredicateForwardsColumnsUnchanged(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"id", "total"})
	pred := p.NewPredicate(st, ColumnOrigin{Node: st, Column: 0}, ScanEq, types.NewParamValue(types.NewInt32(1)), types.Null)

	assert.Equal(t, p.OutputColumns(st), p.OutputColumns(pred))
}

func TestSetChildUpdatesParentBackEdge(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"id"})
	pred := p.NewPredicate(st, ColumnOrigin{Node: st, Column: 0}, ScanEq, types.NewParamValue(types.NewInt32(1)), types.Null)

	parent, ok := p.ParentOf(st)
	require.True(t, ok)
	assert.Equal(t, pred, parent)

	_, ok = p.ParentOf(pred)
	assert.False(t, ok)

	p.SetLeft(pred, NoNode)
	_, ok = p.ParentOf(st)
	assert.False(t, ok)
}

func TestProjectionPassesThroughBareColumnOrigin(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"id", "total"})
	idOrigin := ColumnOrigin{Node: st, Column: 0}
	proj := p.NewProjection(st, []*Expression{
		expr.NewColumn[ColumnOrigin](idOrigin),
		expr.NewArithmetic(expr.Mul, expr.NewColumn[ColumnOrigin](ColumnOrigin{Node: st, Column: 1}), expr.NewLiteral[ColumnOrigin](types.NewInt32(2))).WithAlias("doubled"),
	})

	cols := p.OutputColumns(proj)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, idOrigin, cols[0].Origin)
	assert.Equal(t, "doubled", cols[1].Name)
	assert.Equal(t, ColumnOrigin{Node: proj, Column: 1}, cols[1].Origin)
}

func TestAggregateOutputsGroupByThenAggregates(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"customer", "total"})
	customerOrigin := ColumnOrigin{Node: st, Column: 0}
	totalOrigin := ColumnOrigin{Node: st, Column: 1}

	agg := p.NewAggregate(st,
		[]*Expression{expr.NewFunction(expr.Sum, expr.NewColumn[ColumnOrigin](totalOrigin))},
		[]ColumnOrigin{customerOrigin})

	cols := p.OutputColumns(agg)
	require.Len(t, cols, 2)
	assert.Equal(t, "customer", cols[0].Name)
	assert.Equal(t, customerOrigin, cols[0].Origin)
	assert.Equal(t, ColumnOrigin{Node: agg, Column: 1}, cols[1].Origin)

	origin, err := p.FindColumnOriginByName(agg, "customer", "")
	require.NoError(t, err)
	assert.Equal(t, customerOrigin, origin)
}

func TestNaturalJoinDropsDuplicateColumn(t *testing.T) {
	p := NewPlan()
	t1 := p.NewStoredTable("t1", []string{"a", "b"})
	t2 := p.NewStoredTable("t2", []string{"b", "c"})
	join := p.NewJoin(t1, t2, JoinNatural, ColumnOrigin{}, ColumnOrigin{}, ScanEq)

	names := p.OutputColumnNames(join)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestCrossJoinConcatenatesColumns(t *testing.T) {
	p := NewPlan()
	t1 := p.NewStoredTable("t1", []string{"a"})
	t2 := p.NewStoredTable("t2", []string{"b"})
	join := p.NewJoin(t1, t2, JoinCross, ColumnOrigin{}, ColumnOrigin{}, ScanEq)

	assert.Equal(t, []string{"a", "b"}, p.OutputColumnNames(join))
}

func TestFindColumnOriginByNameAmbiguous(t *testing.T) {
	p := NewPlan()
	t1 := p.NewStoredTable("t1", []string{"id"})
	t2 := p.NewStoredTable("t2", []string{"id"})
	join := p.NewJoin(t1, t2, JoinCross, ColumnOrigin{}, ColumnOrigin{}, ScanEq)

	_, err := p.FindColumnOriginByName(join, "id", "")
	require.Error(t, err)

	origin, err := p.FindColumnOriginByName(join, "id", "t2")
	require.NoError(t, err)
	assert.Equal(t, ColumnOrigin{Node: t2, Column: 0}, origin)
}

func TestManagesTable(t *testing.T) {
	p := NewPlan()
	st := p.NewStoredTable("orders", []string{"id"})
	pred := p.NewPredicate(st, ColumnOrigin{Node: st, Column: 0}, ScanEq, types.NewParamValue(types.NewInt32(1)), types.Null)

	assert.True(t, p.ManagesTable(pred, "orders"))
	assert.False(t, p.ManagesTable(pred, "customers"))
}

func TestDummyTableHasNoColumns(t *testing.T) {
	p := NewPlan()
	dt := p.NewDummyTable(1)
	assert.Empty(t, p.OutputColumns(dt))
}
