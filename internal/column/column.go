// Package column implements the four column variants of spec.md §3/§4.2:
// value, dictionary, run-length, and reference columns, sharing one
// append/read/visit contract dispatched through a closed visitor.
package column

import (
	"fmt"

	"chunkdb/internal/types"
)

// Column is the contract every variant implements (spec.md §4.2): element
// type, length, indexed read (possibly NULL), visitor dispatch, append
// (value columns only), deep copy, and a string-serialization helper used by
// sort and set operations.
type Column interface {
	// ElementType returns the one element type every value in this column
	// holds (NULL rows carry no type of their own).
	ElementType() types.ElementType
	// Len returns the column's length, equal to its chunk's row count.
	Len() int
	// At returns the value at row, which may be types.Null.
	At(row int) types.Value
	// StringAt renders the value at row as a sort/set-operation key; NULL
	// sorts via types.Value{}.String() == "NULL".
	StringAt(row int) string
	// Accept dispatches to the matching Visitor method.
	Accept(v Visitor) error
	// Append extends a value column by one row. Every other variant
	// returns an error: they are immutable once constructed.
	Append(val types.Value) error
	// DeepCopy returns an independent copy of the column.
	DeepCopy() Column
}

// Visitor dispatches over the closed set of column variants, the same
// pattern freeeve-machparse's ast.Visitor uses for SQL AST nodes.
type Visitor interface {
	VisitValue(*ValueColumn) error
	VisitDictionary(*DictionaryColumn) error
	VisitRunLength(*RunLengthColumn) error
	VisitReference(*ReferenceColumn) error
}

// Encoded marks the two variants backed by compressed storage (dictionary
// and run-length), letting operators ask "is this column pre-compressed?"
// without a type switch over every concrete type (spec.md §4.2's "Encoded"
// visitor case).
type Encoded interface {
	Column
	encoded()
}

// errNotAppendable is returned by Append on every immutable variant.
func errNotAppendable(kind string) error {
	return fmt.Errorf("column: %s columns are immutable and cannot be appended to", kind)
}
