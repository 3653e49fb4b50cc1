package column

import (
	"sort"

	"chunkdb/internal/types"
)

// RunLengthColumn stores a sequence of distinct run values and their
// inclusive end-positions (spec.md §3 "Run-length column"). NULL is
// represented directly by a run value in the NULL state — there is no
// separate numeric sentinel (see SPEC_FULL.md §5).
type RunLengthColumn struct {
	elemType     types.ElementType
	values       []types.Value
	endPositions []uint32
}

func (c *RunLengthColumn) encoded() {}

// EncodeRunLength builds a RunLengthColumn from a value column by
// collapsing consecutive equal values (including consecutive NULLs) into a
// single run.
func EncodeRunLength(src *ValueColumn) *RunLengthColumn {
	var values []types.Value
	var ends []uint32
	for i := 0; i < src.Len(); i++ {
		v := src.At(i)
		if len(values) > 0 && valueEqual(values[len(values)-1], v) {
			ends[len(ends)-1] = uint32(i)
			continue
		}
		values = append(values, v)
		ends = append(ends, uint32(i))
	}
	return &RunLengthColumn{elemType: src.elemType, values: values, endPositions: ends}
}

func valueEqual(a, b types.Value) bool {
	if a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	return a.Compare(b) == 0
}

func (c *RunLengthColumn) ElementType() types.ElementType { return c.elemType }

func (c *RunLengthColumn) Len() int {
	if len(c.endPositions) == 0 {
		return 0
	}
	return int(c.endPositions[len(c.endPositions)-1]) + 1
}

// At performs the spec.md §4.2 lookup: binary-search end_positions for the
// first entry >= row; the value at that index is the run value.
func (c *RunLengthColumn) At(row int) types.Value {
	idx := sort.Search(len(c.endPositions), func(i int) bool {
		return c.endPositions[i] >= uint32(row)
	})
	return c.values[idx]
}

func (c *RunLengthColumn) StringAt(row int) string {
	return c.At(row).String()
}

func (c *RunLengthColumn) Accept(v Visitor) error {
	return v.VisitRunLength(c)
}

func (c *RunLengthColumn) Append(types.Value) error {
	return errNotAppendable("run-length")
}

func (c *RunLengthColumn) DeepCopy() Column {
	values := make([]types.Value, len(c.values))
	copy(values, c.values)
	ends := make([]uint32, len(c.endPositions))
	copy(ends, c.endPositions)
	return &RunLengthColumn{elemType: c.elemType, values: values, endPositions: ends}
}

// Values returns the distinct run values in order.
func (c *RunLengthColumn) Values() []types.Value { return c.values }

// EndPositions returns the strictly increasing inclusive end-position per
// run; the last entry equals Len()-1.
func (c *RunLengthColumn) EndPositions() []uint32 { return c.endPositions }
