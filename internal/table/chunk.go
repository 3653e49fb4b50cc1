package table

import (
	"fmt"

	"chunkdb/internal/column"
	"chunkdb/internal/types"
)

// Chunk is a fixed row-limit, column-aligned row group (spec.md §3/§4.3).
type Chunk struct {
	columns []column.Column
	sealed  bool
	limit   int
}

func newOpenValueChunk(elemTypes []types.ElementType, limit int) *Chunk {
	cols := make([]column.Column, len(elemTypes))
	for i, et := range elemTypes {
		cols[i] = column.NewValueColumn(et)
	}
	return &Chunk{columns: cols, limit: limit}
}

// NewReferenceChunk builds a sealed chunk out of already-constructed
// reference columns, the shape operators assemble (spec.md §4.3
// "A References table ... has its chunks assembled by operators").
func NewReferenceChunk(cols []column.Column) *Chunk {
	return &Chunk{columns: cols, sealed: true}
}

// RowCount returns the chunk's row count, taken from its first column (all
// columns in a chunk are aligned by row index).
func (c *Chunk) RowCount() int {
	if len(c.columns) == 0 {
		return 0
	}
	return c.columns[0].Len()
}

func (c *Chunk) ColumnCount() int           { return len(c.columns) }
func (c *Chunk) Column(id int) column.Column { return c.columns[id] }
func (c *Chunk) Columns() []column.Column {
	return append([]column.Column(nil), c.columns...)
}
func (c *Chunk) Sealed() bool { return c.sealed }

// Seal marks the chunk read-only. Once sealed, a chunk needs no
// synchronization to read (spec.md §5).
func (c *Chunk) Seal() { c.sealed = true }

// full reports whether the chunk has reached its row limit.
func (c *Chunk) full() bool {
	return c.limit > 0 && c.RowCount() >= c.limit
}

// AppendRow extends a Data table's currently open chunk, sealing it and
// opening a new one first if it is full (spec.md §4.3 "monotonic insertion
// protocol"). It is an error to append to a References table.
func (t *Table) AppendRow(values []types.Value) error {
	if t.kind != Data {
		return fmt.Errorf("table: cannot append rows to a %s table", t.kind)
	}
	if len(values) != len(t.elemTypes) {
		return fmt.Errorf("table: row has %d values but table has %d columns", len(values), len(t.elemTypes))
	}

	open := t.chunks[len(t.chunks)-1]
	if open.full() || open.Sealed() {
		open.Seal()
		open = newOpenValueChunk(t.elemTypes, t.chunkSize)
		t.chunks = append(t.chunks, open)
	}

	for i, v := range values {
		// SQL integer literals translate as Int64; one that fits is narrowed
		// to an Int32 column's type instead of being rejected.
		if !v.IsNull() && v.Type() == types.Int64 && t.elemTypes[i] == types.Int32 && int64(int32(v.Int64())) == v.Int64() {
			v = types.NewInt32(int32(v.Int64()))
		}
		vc, ok := open.columns[i].(*column.ValueColumn)
		if !ok {
			return fmt.Errorf("table: open chunk column %d is not appendable", i)
		}
		if err := vc.Append(v); err != nil {
			return fmt.Errorf("table: append row: %w", err)
		}
	}
	return nil
}

// SealOpenChunk seals the currently open chunk of a Data table, if any, so
// it becomes eligible for re-encoding. A no-op if the last chunk is already
// sealed or the table has no chunks. The next AppendRow opens a new chunk.
func (t *Table) SealOpenChunk() {
	if len(t.chunks) == 0 {
		return
	}
	t.chunks[len(t.chunks)-1].Seal()
}

// ReplaceChunk swaps in a re-encoded chunk without changing row ids (spec.md
// §4.3 "Sealed chunks may be replaced by re-encoded versions"). i must
// address a sealed chunk with the same row count as replacement.
func (t *Table) ReplaceChunk(i int, replacement *Chunk) error {
	old := t.chunks[i]
	if !old.Sealed() {
		return fmt.Errorf("table: cannot replace open chunk %d", i)
	}
	if old.RowCount() != replacement.RowCount() {
		return fmt.Errorf("table: replacement chunk has %d rows, expected %d", replacement.RowCount(), old.RowCount())
	}
	replacement.sealed = true
	t.chunks[i] = replacement
	return nil
}

// Rebuild discards a Data table's existing chunks and re-populates it from
// rows, used by Delete and Update (Update is Delete+Insert on the same
// pipeline per spec.md §4.7). Row ids are not preserved across a Rebuild.
func (t *Table) Rebuild(rows [][]types.Value) error {
	if t.kind != Data {
		return fmt.Errorf("table: Rebuild only valid for Data tables")
	}
	t.chunks = []*Chunk{newOpenValueChunk(t.elemTypes, t.chunkSize)}
	for _, row := range rows {
		if err := t.AppendRow(row); err != nil {
			return err
		}
	}
	return nil
}

// AppendChunk appends a fully-assembled chunk to a References table,
// the only way such a table's rows are populated (spec.md §4.3).
func (t *Table) AppendChunk(c *Chunk) error {
	if t.kind != References {
		return fmt.Errorf("table: AppendChunk only valid for References tables")
	}
	if c.ColumnCount() != len(t.names) {
		return fmt.Errorf("table: chunk has %d columns, table declares %d", c.ColumnCount(), len(t.names))
	}
	t.chunks = append(t.chunks, c)
	return nil
}
