package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueNullRoundTrip(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, "NULL", v.String())
}

func TestValueTypedAccessors(t *testing.T) {
	assert.Equal(t, int32(7), NewInt32(7).Int32())
	assert.Equal(t, int64(9), NewInt64(9).Int64())
	assert.Equal(t, "hi", NewString("hi").Str())
	assert.False(t, NewInt32(1).IsNull())
}

func TestValueCompare(t *testing.T) {
	assert.Equal(t, -1, NewInt32(1).Compare(NewInt32(2)))
	assert.Equal(t, 0, NewInt32(2).Compare(NewInt32(2)))
	assert.Equal(t, 1, NewInt32(3).Compare(NewInt32(2)))
	assert.Equal(t, -1, NewString("a").Compare(NewString("b")))
}

func TestRowIDOrdering(t *testing.T) {
	a := RowID{ChunkIndex: 0, Offset: 5}
	b := RowID{ChunkIndex: 1, Offset: 0}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Equal(RowID{ChunkIndex: 0, Offset: 5}))
}

func TestFromSQLTypeName(t *testing.T) {
	cases := []struct {
		raw  string
		want ElementType
	}{
		{"INT", Int32},
		{"INT(11)", Int32},
		{"BIGINT", Int64},
		{"BIGINT UNSIGNED", Int64},
		{"DOUBLE", Double},
		{"DECIMAL(10,2)", Double},
		{"VARCHAR(255)", String},
		{"double precision", Double},
	}
	for _, c := range cases {
		et, err := FromSQLTypeName(c.raw)
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.want, et, c.raw)
	}
}

func TestFromSQLTypeNameUnsupported(t *testing.T) {
	_, err := FromSQLTypeName("GEOMETRY")
	require.Error(t, err)
}
