package zsvector

import "encoding/binary"

// FixedVector is a fixed-byte-aligned encoding: every element occupies the
// same number of bytes (1, 2, or 4), chosen to fit the maximum value in the
// input sequence.
type FixedVector struct {
	width int // 1, 2, or 4 bytes per element
	size  int
	data  []byte
}

// ChooseFixed picks the narrowest byte width whose maximum representable
// value is >= max (spec.md §4.1 "Choosing a fixed-byte encoding").
func ChooseFixed(max uint32) ZsType {
	switch {
	case max <= 0xFF:
		return FixedSize1
	case max <= 0xFFFF:
		return FixedSize2
	default:
		return FixedSize4
	}
}

func widthFor(t ZsType) int {
	switch t {
	case FixedSize1:
		return 1
	case FixedSize2:
		return 2
	case FixedSize4:
		return 4
	default:
		panic("zsvector: not a fixed ZsType")
	}
}

// EncodeFixed packs values into the narrowest fixed-byte width that fits
// their maximum. An empty input yields a zero-size, 1-byte-wide vector.
func EncodeFixed(values []uint32) *FixedVector {
	var max uint32
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	width := widthFor(ChooseFixed(max))
	return EncodeFixedWidth(values, width)
}

// EncodeFixedWidth packs values at an explicitly chosen byte width (1, 2, or
// 4), rather than the narrowest width their observed maximum needs. Used
// when the width must also accommodate a value that is not present in
// values itself (e.g. a dictionary column's reserved NULL index).
func EncodeFixedWidth(values []uint32, width int) *FixedVector {
	data := make([]byte, len(values)*width)
	for i, v := range values {
		off := i * width
		switch width {
		case 1:
			data[off] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(data[off:off+2], uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(data[off:off+4], v)
		}
	}
	return &FixedVector{width: width, size: len(values), data: data}
}

func (f *FixedVector) Type() ZsType {
	switch f.width {
	case 1:
		return FixedSize1
	case 2:
		return FixedSize2
	default:
		return FixedSize4
	}
}

func (f *FixedVector) Size() int { return f.size }

func (f *FixedVector) Get(i int) uint32 {
	if i < 0 || i >= f.size {
		panic("zsvector: index out of range")
	}
	off := i * f.width
	switch f.width {
	case 1:
		return uint32(f.data[off])
	case 2:
		return uint32(binary.LittleEndian.Uint16(f.data[off : off+2]))
	default:
		return binary.LittleEndian.Uint32(f.data[off : off+4])
	}
}

func (f *FixedVector) Decode() []uint32 {
	out := make([]uint32, f.size)
	for i := range out {
		out[i] = f.Get(i)
	}
	return out
}

func (f *FixedVector) NewIterator() Iterator {
	return &fixedIterator{f: f}
}

func (f *FixedVector) NewDecoder() Decoder {
	return &fixedDecoder{f: f}
}

// fixedIterator and fixedDecoder both walk a FixedVector sequentially; they
// are separate types because Iterator.Next and Decoder.Next have different
// signatures and cannot share one method.
type fixedIterator struct {
	f   *FixedVector
	pos int
}

func (c *fixedIterator) Next() (uint32, bool) {
	if c.pos >= c.f.size {
		return 0, false
	}
	v := c.f.Get(c.pos)
	c.pos++
	return v, true
}

type fixedDecoder struct {
	f   *FixedVector
	pos int
}

func (c *fixedDecoder) HasNext() bool { return c.pos < c.f.size }

func (c *fixedDecoder) Next() uint32 {
	v := c.f.Get(c.pos)
	c.pos++
	return v
}
