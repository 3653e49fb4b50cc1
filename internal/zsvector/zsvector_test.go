package zsvector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCodecRoundTripAllWidths implements spec.md §8 scenario 1: for each
// bit-width w in [1..32], a sequence of 4200 integers cycling
// [2^(w-1) .. 2^w-1], encoded and decoded via random access, the base
// decoder, and bulk decode — all three must match element-by-element.
func TestCodecRoundTripAllWidths(t *testing.T) {
	for w := 1; w <= 32; w++ {
		w := w
		t.Run(fmt.Sprintf("w%d", w), func(t *testing.T) {
			lo := uint64(1) << uint(w-1)
			hi := uint64(1)<<uint(w) - 1
			if w == 32 {
				hi = 0xFFFFFFFF
			}
			span := hi - lo + 1
			values := make([]uint32, 4200)
			for i := range values {
				values[i] = uint32(lo + uint64(i)%span)
			}

			vec := EncodeSimdBP128(values)
			require.Equal(t, len(values), vec.Size())

			for i, want := range values {
				require.Equal(t, want, vec.Get(i), "random access mismatch at %d", i)
			}

			dec := vec.NewDecoder()
			for i, want := range values {
				require.True(t, dec.HasNext())
				require.Equal(t, want, dec.Next(), "decoder mismatch at %d", i)
			}
			require.False(t, dec.HasNext())

			assert.Equal(t, values, vec.Decode(), "bulk decode mismatch")
		})
	}
}

func TestFixedVectorRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 254, 255}
	v := EncodeFixed(values)
	assert.Equal(t, FixedSize1, v.Type())
	assert.Equal(t, values, v.Decode())

	values2 := []uint32{0, 1000, 65535}
	v2 := EncodeFixed(values2)
	assert.Equal(t, FixedSize2, v2.Type())

	values3 := []uint32{0, 1 << 20, 0xFFFFFFFF}
	v3 := EncodeFixed(values3)
	assert.Equal(t, FixedSize4, v3.Type())
}

func TestEncodeEmpty(t *testing.T) {
	v := Encode(nil)
	assert.Equal(t, 0, v.Size())
	it := v.NewIterator()
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestSimdBP128AllZeros(t *testing.T) {
	values := make([]uint32, 300)
	v := EncodeSimdBP128(values)
	for i := range values {
		assert.Equal(t, uint32(0), v.Get(i))
	}
	assert.Equal(t, values, v.Decode())
}

func TestSimdBP128TrailingPartialMetaBlock(t *testing.T) {
	// 600 values: one full meta-block (512) plus a 88-element tail that
	// must be padded to a full block for packing but reported at its real
	// length by Size()/Decode().
	values := make([]uint32, 600)
	for i := range values {
		values[i] = uint32(i % 17)
	}
	v := EncodeSimdBP128(values)
	assert.Equal(t, 600, v.Size())
	assert.Equal(t, values, v.Decode())
	for i, want := range values {
		require.Equal(t, want, v.Get(i))
	}
}

func TestChoosePicksFixedForSmallSparseMax(t *testing.T) {
	values := []uint32{1, 2, 3, 4, 5}
	assert.Equal(t, FixedSize1, Choose(values))
}
