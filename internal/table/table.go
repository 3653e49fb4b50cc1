// Package table implements chunks and tables: the row-group layout,
// monotonic append path, and type/layout metadata of spec.md §3/§4.3 (C4).
package table

import (
	"fmt"

	"chunkdb/internal/column"
	"chunkdb/internal/types"
)

// Kind distinguishes a table holding real data from one whose chunks may
// only contain reference columns (spec.md §3 "Table").
type Kind uint8

const (
	Data Kind = iota
	References
)

func (k Kind) String() string {
	if k == References {
		return "References"
	}
	return "Data"
}

// DefaultChunkSize is used when a caller does not specify one; matches the
// typical row-group size for an in-memory columnar engine of this shape
// (SPEC_FULL.md §5).
const DefaultChunkSize = 100_000

// Table is an ordered list of named, typed columns, a chunk size, a chunk
// list, and a type tag (spec.md §3/§4.3).
type Table struct {
	names     []string
	elemTypes []types.ElementType
	chunkSize int
	kind      Kind
	chunks    []*Chunk
	stats     Statistics
}

// New creates a table with the given column names/types. chunkSize <= 0
// is replaced by DefaultChunkSize.
func New(names []string, elemTypes []types.ElementType, chunkSize int, kind Kind) (*Table, error) {
	if len(names) != len(elemTypes) {
		return nil, fmt.Errorf("table: %d column names but %d element types", len(names), len(elemTypes))
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	t := &Table{
		names:     append([]string(nil), names...),
		elemTypes: append([]types.ElementType(nil), elemTypes...),
		chunkSize: chunkSize,
		kind:      kind,
		stats:     NopStatistics{},
	}
	if kind == Data {
		t.chunks = append(t.chunks, newOpenValueChunk(elemTypes, chunkSize))
	}
	return t, nil
}

func (t *Table) ColumnCount() int                { return len(t.names) }
func (t *Table) ColumnName(id int) string         { return t.names[id] }
func (t *Table) ColumnType(id int) types.ElementType { return t.elemTypes[id] }
func (t *Table) ChunkSize() int                  { return t.chunkSize }
func (t *Table) Kind() Kind                      { return t.kind }
func (t *Table) ChunkCount() int                 { return len(t.chunks) }
func (t *Table) Chunk(i int) *Chunk              { return t.chunks[i] }

// ColumnNames returns a copy of the declared column names.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

// ColumnNameIndex returns the column id for name, or (-1, false) if absent.
func (t *Table) ColumnNameIndex(name string) (int, bool) {
	for i, n := range t.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// RowCount sums the row count of every chunk.
func (t *Table) RowCount() int {
	n := 0
	for _, c := range t.chunks {
		n += c.RowCount()
	}
	return n
}

// ValueAt satisfies column.BaseTable: look up the chunk addressed by
// row.ChunkIndex and read columnID's value at row.Offset.
func (t *Table) ValueAt(columnID int, row types.RowID) types.Value {
	return t.chunks[row.ChunkIndex].Column(columnID).At(int(row.Offset))
}

// Statistics returns the table's statistics hook (an external collaborator;
// spec.md §3/§6 "Statistics").
func (t *Table) Statistics() Statistics { return t.stats }

// SetStatistics installs a Statistics implementation, normally supplied by
// the optimizer layer this repo does not implement.
func (t *Table) SetStatistics(s Statistics) { t.stats = s }

var _ column.BaseTable = (*Table)(nil)
