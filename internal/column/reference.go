package column

import "chunkdb/internal/types"

// BaseTable is the minimal surface a reference column needs from the table
// it points into. Defined here (rather than importing internal/table) to
// avoid a column<->table import cycle: internal/table.Table implements this
// interface structurally, and internal/column never imports internal/table.
type BaseTable interface {
	// ColumnType returns the element type of the referenced column.
	ColumnType(columnID int) types.ElementType
	// ValueAt returns the value of the referenced column at the given row.
	ValueAt(columnID int, row types.RowID) types.Value
}

// PosList is an ordered sequence of row ids shared by every reference
// column in one segment (spec.md glossary "Position list"). Per spec.md
// §9's Design Note, segments are identified by an explicit SegmentID rather
// than by Go pointer/slice identity, since slices can be copied or
// reallocated without preserving identity.
type PosList struct {
	SegmentID uint64
	Rows      []types.RowID
}

// nextSegmentID hands out process-wide unique segment identifiers. A
// package-level counter is acceptable here because segment identity only
// needs to be unique within one running engine, exactly like the teacher's
// in-memory storage manager registry (no persistence, no cross-process
// identity requirement).
var nextSegmentID uint64

// NewPosList allocates a fresh PosList with its own segment id.
func NewPosList(rows []types.RowID) *PosList {
	nextSegmentID++
	return &PosList{SegmentID: nextSegmentID, Rows: rows}
}

// ReferenceColumn does not own rows; it owns a reference to a base table, a
// source column id within that table, and a shared position list. Two
// reference columns in the same chunk that share a PosList (by SegmentID,
// not by Go pointer identity) form a segment (spec.md §3 "Reference
// column").
type ReferenceColumn struct {
	base     BaseTable
	columnID int
	posList  *PosList
}

// NewReferenceColumn builds a reference column over columnID of base,
// addressed by posList.
func NewReferenceColumn(base BaseTable, columnID int, posList *PosList) *ReferenceColumn {
	return &ReferenceColumn{base: base, columnID: columnID, posList: posList}
}

func (c *ReferenceColumn) Base() BaseTable  { return c.base }
func (c *ReferenceColumn) ColumnID() int     { return c.columnID }
func (c *ReferenceColumn) PosList() *PosList { return c.posList }
func (c *ReferenceColumn) SegmentID() uint64 { return c.posList.SegmentID }

func (c *ReferenceColumn) ElementType() types.ElementType {
	return c.base.ColumnType(c.columnID)
}

func (c *ReferenceColumn) Len() int { return len(c.posList.Rows) }

func (c *ReferenceColumn) At(row int) types.Value {
	return c.base.ValueAt(c.columnID, c.posList.Rows[row])
}

func (c *ReferenceColumn) StringAt(row int) string {
	return c.At(row).String()
}

func (c *ReferenceColumn) Accept(v Visitor) error {
	return v.VisitReference(c)
}

func (c *ReferenceColumn) Append(types.Value) error {
	return errNotAppendable("reference")
}

func (c *ReferenceColumn) DeepCopy() Column {
	rows := make([]types.RowID, len(c.posList.Rows))
	copy(rows, c.posList.Rows)
	return &ReferenceColumn{
		base:     c.base,
		columnID: c.columnID,
		posList:  &PosList{SegmentID: c.posList.SegmentID, Rows: rows},
	}
}
