package zsvector

import "math/bits"

// Choose picks a physical representation for an integer sequence, by
// estimating each candidate's encoded
// byte size and picking the smallest (SPEC_FULL.md §6.1's single-entry-point
// supplement to spec.md's per-encoding "choosing" rules).
func Choose(values []uint32) ZsType {
	if len(values) == 0 {
		return FixedSize1
	}
	var max uint32
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	fixedBytes := widthFor(ChooseFixed(max)) * len(values)
	bp128Bytes := estimateSimdBP128Size(values)
	if bp128Bytes < fixedBytes {
		return SimdBP128
	}
	return ChooseFixed(max)
}

// estimateSimdBP128Size computes the exact encoded byte size SIMD-BP128
// would use for values, without actually packing them.
func estimateSimdBP128Size(values []uint32) int {
	total := 0
	for base := 0; base < len(values); base += metaBlockLen {
		total += headerBytes
		for b := 0; b < blocksPerMB; b++ {
			start := base + b*blockLen
			if start >= len(values) {
				break
			}
			end := start + blockLen
			if end > len(values) {
				end = len(values)
			}
			var max uint32
			for _, v := range values[start:end] {
				if v > max {
					max = v
				}
			}
			w := bits.Len32(max)
			total += (blockLen * w) / 8
		}
	}
	return total
}

// Encode picks the cheaper of the fixed-byte and SIMD-BP128 representations
// for values and returns it already encoded.
func Encode(values []uint32) Vector {
	if Choose(values) == SimdBP128 {
		return EncodeSimdBP128(values)
	}
	return EncodeFixed(values)
}
