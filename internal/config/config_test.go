package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkdb/internal/config"
	"chunkdb/internal/storage"
	"chunkdb/internal/types"
)

func TestLoadRegistersTables(t *testing.T) {
	const schema = `
[[tables]]
name = "users"

  [[tables.columns]]
  name = "id"
  type = "BIGINT"

  [[tables.columns]]
  name = "name"
  type = "VARCHAR(255)"

[[tables]]
name = "orders"
chunk_size = 10

  [[tables.columns]]
  name = "user_id"
  type = "BIGINT"
`
	mgr := storage.NewManager()
	require.NoError(t, config.Load(strings.NewReader(schema), mgr))

	require.True(t, mgr.HasTable("users"))
	users, err := mgr.GetTable("users")
	require.NoError(t, err)
	assert.Equal(t, 2, users.ColumnCount())
	assert.Equal(t, types.Int64, users.ColumnType(0))
	assert.Equal(t, types.String, users.ColumnType(1))

	require.True(t, mgr.HasTable("orders"))
	orders, err := mgr.GetTable("orders")
	require.NoError(t, err)
	assert.Equal(t, 10, orders.ChunkSize())
}

func TestLoadRejectsUnknownType(t *testing.T) {
	const schema = `
[[tables]]
name = "bad"

  [[tables.columns]]
  name = "x"
  type = "BANANA"
`
	mgr := storage.NewManager()
	assert.Error(t, config.Load(strings.NewReader(schema), mgr))
}

func TestLoadRejectsMissingName(t *testing.T) {
	const schema = `
[[tables]]
chunk_size = 5
`
	mgr := storage.NewManager()
	assert.Error(t, config.Load(strings.NewReader(schema), mgr))
}

func TestLoadRejectsDuplicateTable(t *testing.T) {
	const schema = `
[[tables]]
name = "dup"
  [[tables.columns]]
  name = "a"
  type = "INT"

[[tables]]
name = "dup"
  [[tables.columns]]
  name = "a"
  type = "INT"
`
	mgr := storage.NewManager()
	assert.Error(t, config.Load(strings.NewReader(schema), mgr))
}
