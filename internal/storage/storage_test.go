package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/chunkerr"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

func newTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]string{"id"}, []types.ElementType{types.Int32}, 0, table.Data)
	require.NoError(t, err)
	return tbl
}

func TestAddGetRoundTrip(t *testing.T) {
	m := NewManager()
	tbl := newTable(t)

	require.NoError(t, m.AddTable("orders", tbl))
	assert.True(t, m.HasTable("orders"))

	got, err := m.GetTable("orders")
	require.NoError(t, err)
	assert.Same(t, tbl, got)
}

func TestAddTableDuplicateIsSchemaError(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddTable("orders", newTable(t)))

	err := m.AddTable("orders", newTable(t))
	require.Error(t, err)
	assert.True(t, chunkerr.Is(err, chunkerr.Schema))
}

func TestGetTableUnknownIsSchemaError(t *testing.T) {
	m := NewManager()
	_, err := m.GetTable("missing")
	require.Error(t, err)
	assert.True(t, chunkerr.Is(err, chunkerr.Schema))
}

func TestCaseSensitiveNames(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddTable("Orders", newTable(t)))
	assert.False(t, m.HasTable("orders"))
}

func TestLockUnknownTable(t *testing.T) {
	m := NewManager()
	_, err := m.Lock("missing")
	require.Error(t, err)
	assert.True(t, chunkerr.Is(err, chunkerr.Schema))
}

func TestLockReacquirableAfterUnlock(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddTable("orders", newTable(t)))

	unlock1, err := m.Lock("orders")
	require.NoError(t, err)
	unlock1()

	unlock2, err := m.Lock("orders")
	require.NoError(t, err)
	unlock2()
}

func TestDropTable(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddTable("orders", newTable(t)))
	m.DropTable("orders")
	assert.False(t, m.HasTable("orders"))
	m.DropTable("orders") // no-op
}
