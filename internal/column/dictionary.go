package column

import (
	"sort"

	"chunkdb/internal/types"
	"chunkdb/internal/zsvector"
)

// DictionaryColumn is a sorted unique dictionary of T plus a fixed-width
// attribute vector of indices into it. A reserved top index (NullIndex)
// denotes NULL (spec.md §3 "Dictionary column"). Immutable once built.
type DictionaryColumn struct {
	elemType  types.ElementType
	dict      []types.Value
	attribute zsvector.Vector
	nullIndex uint32
}

func (c *DictionaryColumn) encoded() {}

// Dictionary returns the sorted, unique, non-NULL values backing c.
func (c *DictionaryColumn) Dictionary() []types.Value { return c.dict }

// NullIndex returns the reserved attribute-vector index denoting NULL,
// which equals len(Dictionary()).
func (c *DictionaryColumn) NullIndex() uint32 { return c.nullIndex }

// AttributeVector returns the per-row index sequence into the dictionary.
func (c *DictionaryColumn) AttributeVector() zsvector.Vector { return c.attribute }

func (c *DictionaryColumn) ElementType() types.ElementType { return c.elemType }
func (c *DictionaryColumn) Len() int                        { return c.attribute.Size() }

func (c *DictionaryColumn) At(row int) types.Value {
	idx := c.attribute.Get(row)
	if idx == c.nullIndex {
		return types.Null
	}
	return c.dict[idx]
}

func (c *DictionaryColumn) StringAt(row int) string {
	return c.At(row).String()
}

func (c *DictionaryColumn) Accept(v Visitor) error {
	return v.VisitDictionary(c)
}

func (c *DictionaryColumn) Append(types.Value) error {
	return errNotAppendable("dictionary")
}

func (c *DictionaryColumn) DeepCopy() Column {
	dict := make([]types.Value, len(c.dict))
	copy(dict, c.dict)
	return &DictionaryColumn{
		elemType:  c.elemType,
		dict:      dict,
		attribute: c.attribute, // immutable, safe to share
		nullIndex: c.nullIndex,
	}
}

// EncodeDictionary builds a DictionaryColumn from a value column (spec.md
// §4.2 "Dictionary encoder"): copy values, move NULLs to the tail and erase
// them, sort ascending, unique in place, shrink; assign each value its
// lower_bound index (NULLs get the reserved top index); encode the index
// sequence with the narrowest fixed-byte ZsType whose max >= dictionary
// size.
func EncodeDictionary(src *ValueColumn) *DictionaryColumn {
	nonNull := make([]types.Value, 0, src.Len())
	for i := 0; i < src.Len(); i++ {
		if v := src.At(i); !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}
	sort.Slice(nonNull, func(i, j int) bool { return nonNull[i].Compare(nonNull[j]) < 0 })
	dict := uniqueSorted(nonNull)
	nullIndex := uint32(len(dict))

	indices := make([]uint32, src.Len())
	for i := 0; i < src.Len(); i++ {
		v := src.At(i)
		if v.IsNull() {
			indices[i] = nullIndex
			continue
		}
		indices[i] = uint32(lowerBound(dict, v))
	}

	// Width must fit nullIndex == len(dict) even if no row is currently
	// NULL, so zsvector.ChooseFixed is driven off the dictionary size
	// rather than the observed maximum index (spec.md §4.2).
	width := 4
	switch zsvector.ChooseFixed(nullIndex) {
	case zsvector.FixedSize1:
		width = 1
	case zsvector.FixedSize2:
		width = 2
	}
	attr := zsvector.EncodeFixedWidth(indices, width)
	return &DictionaryColumn{
		elemType:  src.elemType,
		dict:      dict,
		attribute: attr,
		nullIndex: nullIndex,
	}
}

// uniqueSorted removes adjacent duplicates from an already-sorted slice.
func uniqueSorted(sorted []types.Value) []types.Value {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if out[len(out)-1].Compare(v) != 0 {
			out = append(out, v)
		}
	}
	return out
}

// lowerBound returns the index of the first element in sorted dict that is
// not less than v. Since dict is unique, a hit returns the exact index.
func lowerBound(dict []types.Value, v types.Value) int {
	return sort.Search(len(dict), func(i int) bool { return dict[i].Compare(v) >= 0 })
}
