package chunkdb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb"
	"chunkdb/internal/types"
)

func newEngine(t *testing.T) *chunkdb.Engine {
	t.Helper()
	e := chunkdb.New()
	require.NoError(t, e.CreateTable("orders", []string{"id", "total"},
		[]types.ElementType{types.Int32, types.Int32}, 0))
	ctx := context.Background()
	_, err := e.Query(ctx, "INSERT INTO orders SELECT 1, 100")
	require.NoError(t, err)
	_, err = e.Query(ctx, "INSERT INTO orders SELECT 2, 50")
	require.NoError(t, err)
	return e
}

func TestQuerySelectWithPredicate(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(context.Background(), "SELECT id FROM orders WHERE total > 60")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int32(1), res.Rows[0][0].Int32())
}

func TestQueryAggregate(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(context.Background(), "SELECT SUM(total) FROM orders")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(150), res.Rows[0][0].Int64())
}

func TestQueryUpdateThenSelect(t *testing.T) {
	e := newEngine(t)
	_, err := e.Query(context.Background(), "UPDATE orders SET total = 999 WHERE id = 1")
	require.NoError(t, err)

	res, err := e.Query(context.Background(), "SELECT total FROM orders WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int32(999), res.Rows[0][0].Int32())

	// The non-matching row must survive the update untouched.
	res, err = e.Query(context.Background(), "SELECT total FROM orders WHERE id = 2")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int32(50), res.Rows[0][0].Int32())
}

func TestQueryDeleteThenShow(t *testing.T) {
	e := newEngine(t)
	_, err := e.Query(context.Background(), "DELETE FROM orders WHERE id = 2")
	require.NoError(t, err)

	res, err := e.Query(context.Background(), "SELECT id FROM orders")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int32(1), res.Rows[0][0].Int32())
}

func TestQueryShowTables(t *testing.T) {
	e := newEngine(t)
	res, err := e.Query(context.Background(), "SHOW TABLES")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "orders", res.Rows[0][0].Str())
}

func TestQueryNoStatementIsError(t *testing.T) {
	e := chunkdb.New()
	_, err := e.Query(context.Background(), "   ")
	assert.Error(t, err)
}
