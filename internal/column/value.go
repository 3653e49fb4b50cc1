package column

import "chunkdb/internal/types"

// ValueColumn is a contiguous sequence of typed values, appendable until its
// chunk is sealed (spec.md §3 "Value column").
type ValueColumn struct {
	elemType types.ElementType
	values   []types.Value
}

// NewValueColumn creates an empty, appendable value column of the given
// element type.
func NewValueColumn(elemType types.ElementType) *ValueColumn {
	return &ValueColumn{elemType: elemType}
}

// NewValueColumnFrom wraps an existing slice of values as a value column.
// Every non-NULL value must already be of elemType; callers that build
// columns by hand (e.g. tests, operator output) use this instead of
// appending one row at a time.
func NewValueColumnFrom(elemType types.ElementType, values []types.Value) *ValueColumn {
	cp := make([]types.Value, len(values))
	copy(cp, values)
	return &ValueColumn{elemType: elemType, values: cp}
}

func (c *ValueColumn) ElementType() types.ElementType { return c.elemType }
func (c *ValueColumn) Len() int                        { return len(c.values) }

func (c *ValueColumn) At(row int) types.Value {
	return c.values[row]
}

func (c *ValueColumn) StringAt(row int) string {
	return c.values[row].String()
}

func (c *ValueColumn) Accept(v Visitor) error {
	return v.VisitValue(c)
}

func (c *ValueColumn) Append(val types.Value) error {
	if !val.IsNull() && val.Type() != c.elemType {
		return errAppendTypeMismatch(c.elemType, val.Type())
	}
	c.values = append(c.values, val)
	return nil
}

func (c *ValueColumn) DeepCopy() Column {
	return NewValueColumnFrom(c.elemType, c.values)
}

func errAppendTypeMismatch(want, got types.ElementType) error {
	return errColumnTypeMismatch("append", want, got)
}
