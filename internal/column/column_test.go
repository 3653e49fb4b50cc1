package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/types"
)

func TestValueColumnAppendAndRead(t *testing.T) {
	c := NewValueColumn(types.Int32)
	require.NoError(t, c.Append(types.NewInt32(1)))
	require.NoError(t, c.Append(types.Null))
	require.NoError(t, c.Append(types.NewInt32(3)))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int32(1), c.At(0).Int32())
	assert.True(t, c.At(1).IsNull())
	assert.Equal(t, int32(3), c.At(2).Int32())
}

func TestValueColumnAppendTypeMismatch(t *testing.T) {
	c := NewValueColumn(types.Int32)
	err := c.Append(types.NewString("x"))
	require.Error(t, err)
}

// TestDictionaryEncode implements spec.md §8 scenario 2: dictionary encode
// of ["b", NULL, "a", "a"] yields dictionary ["a","b"], null index 2,
// attribute vector [1,2,0,0].
func TestDictionaryEncode(t *testing.T) {
	src := NewValueColumnFrom(types.String, []types.Value{
		types.NewString("b"),
		types.Null,
		types.NewString("a"),
		types.NewString("a"),
	})
	d := EncodeDictionary(src)

	require.Len(t, d.Dictionary(), 2)
	assert.Equal(t, "a", d.Dictionary()[0].Str())
	assert.Equal(t, "b", d.Dictionary()[1].Str())
	assert.Equal(t, uint32(2), d.NullIndex())

	want := []uint32{1, 2, 0, 0}
	for i, w := range want {
		assert.Equal(t, w, d.AttributeVector().Get(i))
	}

	assert.Equal(t, "b", d.At(0).Str())
	assert.True(t, d.At(1).IsNull())
	assert.Equal(t, "a", d.At(2).Str())
	assert.Equal(t, "a", d.At(3).Str())
}

func TestDictionaryEncodeAllNonNullStillFitsNullIndex(t *testing.T) {
	src := NewValueColumnFrom(types.Int32, []types.Value{types.NewInt32(5), types.NewInt32(5)})
	d := EncodeDictionary(src)
	assert.Equal(t, uint32(1), d.NullIndex())
	// A later append-free column has no NULL rows, but the attribute vector
	// must still be able to represent NullIndex without re-encoding.
	assert.GreaterOrEqual(t, d.AttributeVector().Get(0), uint32(0))
}

func TestRunLengthEncodeAndLookup(t *testing.T) {
	src := NewValueColumnFrom(types.Int32, []types.Value{
		types.NewInt32(1), types.NewInt32(1), types.NewInt32(1),
		types.Null, types.Null,
		types.NewInt32(2),
	})
	rl := EncodeRunLength(src)

	assert.Equal(t, []uint32{2, 4, 5}, rl.EndPositions())
	assert.Equal(t, 6, rl.Len())
	for i, want := range []string{"1", "1", "1", "NULL", "NULL", "2"} {
		assert.Equal(t, want, rl.At(i).String(), "row %d", i)
	}
}

func TestRunLengthEndPositionsStrictlyIncreasing(t *testing.T) {
	src := NewValueColumnFrom(types.Int32, []types.Value{
		types.NewInt32(1), types.NewInt32(2), types.NewInt32(3),
	})
	rl := EncodeRunLength(src)
	ends := rl.EndPositions()
	for i := 1; i < len(ends); i++ {
		assert.Greater(t, ends[i], ends[i-1])
	}
	assert.Equal(t, uint32(rl.Len()-1), ends[len(ends)-1])
}

// fakeTable is a minimal BaseTable for reference-column tests.
type fakeTable struct {
	elemType types.ElementType
	rows     map[types.RowID]types.Value
}

func (f *fakeTable) ColumnType(int) types.ElementType { return f.elemType }
func (f *fakeTable) ValueAt(_ int, row types.RowID) types.Value {
	return f.rows[row]
}

func TestReferenceColumn(t *testing.T) {
	base := &fakeTable{
		elemType: types.Int32,
		rows: map[types.RowID]types.Value{
			{ChunkIndex: 0, Offset: 0}: types.NewInt32(10),
			{ChunkIndex: 0, Offset: 2}: types.NewInt32(30),
		},
	}
	pl := NewPosList([]types.RowID{
		{ChunkIndex: 0, Offset: 0},
		{ChunkIndex: 0, Offset: 2},
	})
	ref := NewReferenceColumn(base, 0, pl)

	assert.Equal(t, types.Int32, ref.ElementType())
	assert.Equal(t, 2, ref.Len())
	assert.Equal(t, int32(10), ref.At(0).Int32())
	assert.Equal(t, int32(30), ref.At(1).Int32())
}

func TestReferenceColumnsShareSegmentBySegmentID(t *testing.T) {
	base := &fakeTable{elemType: types.Int32, rows: map[types.RowID]types.Value{}}
	pl := NewPosList(nil)
	a := NewReferenceColumn(base, 0, pl)
	b := NewReferenceColumn(base, 1, pl)
	assert.Equal(t, a.SegmentID(), b.SegmentID())

	other := NewReferenceColumn(base, 0, NewPosList(nil))
	assert.NotEqual(t, a.SegmentID(), other.SegmentID())
}
