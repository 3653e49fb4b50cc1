package zsvector

import (
	"encoding/binary"
	"math/bits"
)

const (
	blockLen     = 128 // integers per block
	blocksPerMB  = 4   // blocks per meta-block
	metaBlockLen = blockLen * blocksPerMB
	headerBytes  = blocksPerMB * 4 // four uint32 bit-widths, 128 bits total
)

// SimdBP128Vector packs successive 128-integer blocks at the minimum bit
// width each needs; four blocks form a meta-block prefixed by a 128-bit
// header of four bit-widths (spec.md §4.1). Decoding unpacks one block at a
// time; this implementation is a scalar fallback, explicitly permitted by
// spec.md as producing bit-identical output to a SIMD implementation.
type SimdBP128Vector struct {
	size int
	data []byte
	// metaOffsets[i] is the byte offset of meta-block i within data;
	// len(metaOffsets) == number of meta-blocks + 1, with the last entry
	// equal to len(data). Precomputed at encode time so random Get(i) does
	// not need to rescan from the start of the stream.
	metaOffsets []int
}

func (v *SimdBP128Vector) Type() ZsType { return SimdBP128 }
func (v *SimdBP128Vector) Size() int    { return v.size }

// EncodeSimdBP128 encodes values using the meta-block/block layout described
// in spec.md §4.1. A trailing partial block is padded with zeros for
// packing purposes; v.Size() still reports len(values).
func EncodeSimdBP128(values []uint32) *SimdBP128Vector {
	numMetaBlocks := (len(values) + metaBlockLen - 1) / metaBlockLen
	if len(values) == 0 {
		numMetaBlocks = 0
	}

	var data []byte
	offsets := make([]int, 0, numMetaBlocks+1)
	offsets = append(offsets, 0)

	for mb := 0; mb < numMetaBlocks; mb++ {
		base := mb * metaBlockLen
		widths := [blocksPerMB]int{}
		blocks := make([][]uint32, blocksPerMB)
		for b := 0; b < blocksPerMB; b++ {
			start := base + b*blockLen
			block := make([]uint32, blockLen)
			var max uint32
			for k := 0; k < blockLen; k++ {
				idx := start + k
				if idx < len(values) {
					block[k] = values[idx]
					if block[k] > max {
						max = block[k]
					}
				}
			}
			blocks[b] = block
			widths[b] = bits.Len32(max)
		}

		header := make([]byte, headerBytes)
		for b := 0; b < blocksPerMB; b++ {
			binary.LittleEndian.PutUint32(header[b*4:b*4+4], uint32(widths[b]))
		}
		data = append(data, header...)
		for b := 0; b < blocksPerMB; b++ {
			data = append(data, packBlock(blocks[b], widths[b])...)
		}
		offsets = append(offsets, len(data))
	}

	return &SimdBP128Vector{size: len(values), data: data, metaOffsets: offsets}
}

// packBlock bit-packs exactly blockLen values at the given width into
// ceil(blockLen*width/8) == (blockLen/8)*width bytes (blockLen is a multiple
// of 8, so this divides evenly for every width in [0,32]).
func packBlock(values []uint32, width int) []byte {
	if width == 0 {
		return nil
	}
	out := make([]byte, (blockLen*width+7)/8)
	bitPos := 0
	for _, v := range values {
		writeBits(out, bitPos, v, width)
		bitPos += width
	}
	return out
}

// writeBits writes the low `width` bits of v into out starting at bit
// offset bitPos (LSB-first within each byte).
func writeBits(out []byte, bitPos int, v uint32, width int) {
	for b := 0; b < width; b++ {
		if v&(1<<uint(b)) != 0 {
			pos := bitPos + b
			out[pos/8] |= 1 << uint(pos%8)
		}
	}
}

// readBits reads `width` bits starting at bit offset bitPos from data
// (LSB-first within each byte), inverse of writeBits.
func readBits(data []byte, bitPos int, width int) uint32 {
	var v uint32
	for b := 0; b < width; b++ {
		pos := bitPos + b
		if data[pos/8]&(1<<uint(pos%8)) != 0 {
			v |= 1 << uint(b)
		}
	}
	return v
}

// unpackBlock unpacks exactly blockLen values from data (which must be
// (blockLen/8)*width bytes long) at the given width.
func unpackBlock(data []byte, width int) []uint32 {
	out := make([]uint32, blockLen)
	if width == 0 {
		return out
	}
	bitPos := 0
	for i := range out {
		out[i] = readBits(data, bitPos, width)
		bitPos += width
	}
	return out
}

// metaBlockWidths reads the four packed bit-widths from a meta-block's
// 16-byte header.
func metaBlockWidths(header []byte) [blocksPerMB]int {
	var widths [blocksPerMB]int
	for b := 0; b < blocksPerMB; b++ {
		widths[b] = int(binary.LittleEndian.Uint32(header[b*4 : b*4+4]))
	}
	return widths
}

// decodeMetaBlock unpacks one full meta-block (512 values) starting at
// byte offset `off` in v.data.
func (v *SimdBP128Vector) decodeMetaBlock(off int) []uint32 {
	widths := metaBlockWidths(v.data[off : off+headerBytes])
	pos := off + headerBytes
	out := make([]uint32, 0, metaBlockLen)
	for b := 0; b < blocksPerMB; b++ {
		w := widths[b]
		blockBytes := (blockLen * w) / 8
		out = append(out, unpackBlock(v.data[pos:pos+blockBytes], w)...)
		pos += blockBytes
	}
	return out
}

func (v *SimdBP128Vector) Get(i int) uint32 {
	if i < 0 || i >= v.size {
		panic("zsvector: index out of range")
	}
	mb := i / metaBlockLen
	within := i % metaBlockLen
	blockIdx := within / blockLen
	elemIdx := within % blockLen

	off := v.metaOffsets[mb]
	widths := metaBlockWidths(v.data[off : off+headerBytes])
	dataOff := off + headerBytes
	for b := 0; b < blockIdx; b++ {
		dataOff += (blockLen * widths[b]) / 8
	}
	w := widths[blockIdx]
	if w == 0 {
		return 0
	}
	return readBits(v.data[dataOff:], elemIdx*w, w)
}

func (v *SimdBP128Vector) Decode() []uint32 {
	out := make([]uint32, 0, v.size)
	numMetaBlocks := len(v.metaOffsets) - 1
	for mb := 0; mb < numMetaBlocks; mb++ {
		decoded := v.decodeMetaBlock(v.metaOffsets[mb])
		remaining := v.size - len(out)
		if remaining < len(decoded) {
			decoded = decoded[:remaining]
		}
		out = append(out, decoded...)
	}
	return out
}

func (v *SimdBP128Vector) NewIterator() Iterator {
	return &sliceIterator{values: v.Decode()}
}

func (v *SimdBP128Vector) NewDecoder() Decoder {
	return &simdBP128Decoder{v: v}
}

// simdBP128Decoder walks meta-block by meta-block, as spec.md §4.1
// prescribes for sequential decode, buffering one meta-block's worth of
// values at a time rather than the whole vector.
type simdBP128Decoder struct {
	v       *SimdBP128Vector
	mbIndex int
	buf     []uint32
	bufPos  int
	emitted int
}

func (d *simdBP128Decoder) HasNext() bool { return d.emitted < d.v.size }

func (d *simdBP128Decoder) Next() uint32 {
	if !d.HasNext() {
		panic("zsvector: decoder exhausted")
	}
	if d.bufPos >= len(d.buf) {
		off := d.v.metaOffsets[d.mbIndex]
		d.buf = d.v.decodeMetaBlock(off)
		d.bufPos = 0
		d.mbIndex++
	}
	val := d.buf[d.bufPos]
	d.bufPos++
	d.emitted++
	return val
}
