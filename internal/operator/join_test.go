package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/lqp"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

func twoRowTable(t *testing.T, names []string, elemTypes []types.ElementType, rows [][]types.Value) *table.Table {
	t.Helper()
	tbl, err := table.New(names, elemTypes, 0, table.Data)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}
	return tbl
}

func TestJoinCrossProducesFullCartesianProduct(t *testing.T) {
	left := twoRowTable(t, []string{"a"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.NewInt32(1)}, {types.NewInt32(2)}})
	right := twoRowTable(t, []string{"b"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.NewInt32(10)}, {types.NewInt32(20)}, {types.NewInt32(30)}})

	j := NewJoin(NewStoredTable("left", left), NewStoredTable("right", right),
		lqp.JoinCross, 0, 0, lqp.ScanEq, []string{"a", "b"}, []types.ElementType{types.Int32, types.Int32})

	out, err := j.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)
	assert.Equal(t, 6, out.RowCount())
}

func TestJoinRightFillsNullOnUnmatchedLeft(t *testing.T) {
	left := twoRowTable(t, []string{"a"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.NewInt32(1)}})
	right := twoRowTable(t, []string{"b"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.NewInt32(1)}, {types.NewInt32(2)}})

	j := NewJoin(NewStoredTable("left", left), NewStoredTable("right", right),
		lqp.JoinRight, 0, 0, lqp.ScanEq, []string{"a", "b"}, []types.ElementType{types.Int32, types.Int32})

	out, err := j.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)
	require.Equal(t, 2, out.RowCount())

	var sawNullA bool
	for r := 0; r < out.RowCount(); r++ {
		row := types.RowID{ChunkIndex: 0, Offset: uint32(r)}
		if out.ValueAt(0, row).IsNull() {
			sawNullA = true
		}
	}
	assert.True(t, sawNullA)
}

func TestJoinNullNeverMatches(t *testing.T) {
	left := twoRowTable(t, []string{"a"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.Null}})
	right := twoRowTable(t, []string{"b"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.Null}})

	j := NewJoin(NewStoredTable("left", left), NewStoredTable("right", right),
		lqp.JoinInner, 0, 0, lqp.ScanEq, []string{"a", "b"}, []types.ElementType{types.Int32, types.Int32})

	out, err := j.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)
	assert.Equal(t, 0, out.RowCount())
}

func TestValidateOpPassesThroughChildUnchanged(t *testing.T) {
	tbl := twoRowTable(t, []string{"a"}, []types.ElementType{types.Int32},
		[][]types.Value{{types.NewInt32(1)}, {types.NewInt32(2)}})
	v := NewValidate(NewStoredTable("t", tbl))

	out, err := v.Execute(&Context{Ctx: context.Background()})
	require.NoError(t, err)
	assert.Same(t, tbl, out)
}
