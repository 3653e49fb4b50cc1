package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/column"
	"chunkdb/internal/types"
)

func TestAppendRowSealsFullChunks(t *testing.T) {
	tbl, err := New([]string{"a"}, []types.ElementType{types.Int32}, 2, Data)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(int32(i))}))
	}

	require.Equal(t, 3, tbl.ChunkCount())
	assert.True(t, tbl.Chunk(0).Sealed())
	assert.True(t, tbl.Chunk(1).Sealed())
	assert.False(t, tbl.Chunk(2).Sealed())
	assert.Equal(t, 2, tbl.Chunk(0).RowCount())
	assert.Equal(t, 2, tbl.Chunk(1).RowCount())
	assert.Equal(t, 1, tbl.Chunk(2).RowCount())
	assert.Equal(t, 5, tbl.RowCount())
}

func TestValueAtAddressesAcrossChunks(t *testing.T) {
	tbl, err := New([]string{"a"}, []types.ElementType{types.Int32}, 2, Data)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(int32(i * 10))}))
	}
	assert.Equal(t, int32(0), tbl.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: 0}).Int32())
	assert.Equal(t, int32(10), tbl.ValueAt(0, types.RowID{ChunkIndex: 0, Offset: 1}).Int32())
	assert.Equal(t, int32(20), tbl.ValueAt(0, types.RowID{ChunkIndex: 1, Offset: 0}).Int32())
}

func TestReplaceChunkRequiresSealed(t *testing.T) {
	tbl, err := New([]string{"a"}, []types.ElementType{types.Int32}, 10, Data)
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]types.Value{types.NewInt32(1)}))

	err = tbl.ReplaceChunk(0, NewReferenceChunk(nil))
	require.Error(t, err)

	tbl.SealOpenChunk()
	dictCol := column.EncodeDictionary(column.NewValueColumnFrom(types.Int32, []types.Value{types.NewInt32(1)}))
	replacement := &Chunk{columns: []column.Column{dictCol}}
	require.NoError(t, tbl.ReplaceChunk(0, replacement))
	assert.True(t, tbl.Chunk(0).Sealed())
}

func TestReferencesTableAppendChunkOnly(t *testing.T) {
	tbl, err := New([]string{"a"}, []types.ElementType{types.Int32}, 10, References)
	require.NoError(t, err)

	err = tbl.AppendRow([]types.Value{types.NewInt32(1)})
	require.Error(t, err)

	require.NoError(t, tbl.AppendChunk(NewReferenceChunk([]column.Column{
		column.NewValueColumn(types.Int32),
	})))
	assert.Equal(t, 1, tbl.ChunkCount())
}
