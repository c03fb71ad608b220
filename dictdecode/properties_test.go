package dictdecode_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/dictdecode"
	"github.com/cocosip/parqdict/rle"
)

func bitWidthFor(dictLen int) int {
	if dictLen <= 1 {
		return 1
	}
	return bits.Len(uint(dictLen - 1))
}

// encodeIndices packs indices into a single bit-packed run, zero-padded to a
// multiple of 8, and wraps it in a Decoder clamped to len(indices).
func encodeIndices(indices []uint32, bitWidth int) *rle.Decoder {
	padded := append([]uint32(nil), indices...)
	for len(padded)%8 != 0 {
		padded = append(padded, 0)
	}
	var data []byte
	data = rle.EncodeBitpackedRun(data, padded, bitWidth)
	return rle.NewDecoder(data, bitWidth, len(indices))
}

func maskOf(bools []bool) bitmask.BitMask {
	bm := bitmask.NewBitmap()
	for _, v := range bools {
		if v {
			bm.AppendOnes(1)
		} else {
			bm.AppendZeros(1)
		}
	}
	return bm.View()
}

func drawDict(t *rapid.T) []int {
	n := rapid.IntRange(1, 6).Draw(t, "dictLen")
	dict := make([]int, n)
	for i := range dict {
		dict[i] = i * 17
	}
	return dict
}

func drawBoolSlice(t *rapid.T, n int, label string) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = rapid.Bool().Draw(t, label)
	}
	return out
}

// drawValidityWithCount returns a bool slice of length numValid+numNull with
// exactly numValid true entries, in an order randomised (and shrinkable) via
// rapid-driven Fisher-Yates swaps.
func drawValidityWithCount(t *rapid.T, numValid, numNull int) []bool {
	bits := make([]bool, numValid+numNull)
	for i := 0; i < numValid; i++ {
		bits[i] = true
	}
	for i := len(bits) - 1; i > 0; i-- {
		j := rapid.IntRange(0, i).Draw(t, "shuffleSwap")
		bits[i], bits[j] = bits[j], bits[i]
	}
	return bits
}

// encodeMixedStream draws a sequence of exactly total indices into dict,
// emitted as a randomised mix of RLE runs (constant value) and bit-packed
// runs (arbitrary values, sized in whole groups of 8), so both branches of
// every kernel's chunk-dispatch switch get exercised in the same stream.
func encodeMixedStream(t *rapid.T, dict []int, total int) ([]uint32, *rle.Decoder) {
	bitWidth := bitWidthFor(len(dict))
	var data []byte
	var indices []uint32
	remaining := total
	for remaining > 0 {
		useRLE := remaining < 8 || rapid.Bool().Draw(t, "segIsRLE")
		if useRLE {
			length := rapid.IntRange(1, remaining).Draw(t, "rleLen")
			val := uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "rleVal"))
			data = rle.EncodeRLERun(data, val, length, bitWidth)
			for i := 0; i < length; i++ {
				indices = append(indices, val)
			}
			remaining -= length
			continue
		}

		groups := rapid.IntRange(1, remaining/8).Draw(t, "bpGroups")
		seg := make([]uint32, groups*8)
		for i := range seg {
			seg[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "bpVal"))
		}
		data = rle.EncodeBitpackedRun(data, seg, bitWidth)
		indices = append(indices, seg...)
		remaining -= len(seg)
	}
	return indices, rle.NewDecoder(data, bitWidth, len(indices))
}

// referenceDecode mirrors the optional/masked-optional row semantics by
// plain iteration: each non-null row consumes exactly one index in order;
// null rows consume none and yield the zero value. selectBits, if non-nil,
// restricts the returned rows (and their validity) to the selected ones.
func referenceDecode(dict []int, indices []uint32, validBits, selectBits []bool) (want []int, wantValidity []bool) {
	j := 0
	for i, valid := range validBits {
		var v int
		if valid {
			v = dict[indices[j]]
			j++
		}
		if selectBits == nil || selectBits[i] {
			want = append(want, v)
			wantValidity = append(wantValidity, valid)
		}
	}
	return want, wantValidity
}

// Invariant: length law. A successful required-path call with no filter
// appends exactly values.Len() rows.
func TestPropertyLengthLawRequired(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 64).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}

		values := encodeIndices(indices, bitWidthFor(len(dict)))
		var target []int
		err := dictdecode.DecodeDict(values, dict, false, nil, nil, nil, &target)
		require.NoError(t, err)
		assert.Len(t, target, n)
	})
}

// Invariant: round-trip. Decoding a sequence with no nulls and no filter
// reconstructs it verbatim.
func TestPropertyRoundTripRequired(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 64).Draw(t, "n")
		indices := make([]uint32, n)
		want := make([]int, n)
		for i := range indices {
			idx := rapid.IntRange(0, len(dict)-1).Draw(t, "idx")
			indices[i] = uint32(idx)
			want[i] = dict[idx]
		}

		values := encodeIndices(indices, bitWidthFor(len(dict)))
		target := []int{} // non-nil, so an empty decode equals an empty want
		err := dictdecode.DecodeDict(values, dict, false, nil, nil, nil, &target)
		require.NoError(t, err)
		assert.Equal(t, want, target)
	})
}

// Invariant: round-trip + null padding for the optional path.
func TestPropertyRoundTripOptional(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		numRows := rapid.IntRange(0, 64).Draw(t, "numRows")
		validBits := drawBoolSlice(t, numRows, "valid")

		var indices []uint32
		want := make([]int, numRows)
		for i, valid := range validBits {
			if !valid {
				continue
			}
			idx := rapid.IntRange(0, len(dict)-1).Draw(t, "idx")
			indices = append(indices, uint32(idx))
			want[i] = dict[idx]
		}

		values := encodeIndices(indices, bitWidthFor(len(dict)))
		validity := maskOf(validBits)
		validityOut := bitmask.NewBitmap()
		target := []int{} // non-nil, so an empty decode equals an empty want

		err := dictdecode.DecodeDict(values, dict, true, &validity, nil, validityOut, &target)
		require.NoError(t, err)
		assert.Equal(t, want, target)
		assert.Equal(t, numRows, validityOut.Len())
		assert.Equal(t, numRows, len(target))
	})
}

// Invariant: filter composition. Decoding with a Mask equals decoding with
// no filter then indexing by the mask.
func TestPropertyFilterCompositionMask(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 48).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}
		selectBits := drawBoolSlice(t, n, "select")

		unfiltered := make([]int, n)
		for i, idx := range indices {
			unfiltered[i] = dict[idx]
		}
		var want []int
		for i, sel := range selectBits {
			if sel {
				want = append(want, unfiltered[i])
			}
		}

		filt := dictdecode.NewMaskFilter(maskOf(selectBits))
		var target []int
		err := dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, false, nil, filt, nil, &target)
		require.NoError(t, err)
		assert.Equal(t, want, target)
	})
}

// Invariant: filter composition for Range.
func TestPropertyFilterCompositionRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 48).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}
		start := rapid.IntRange(0, n).Draw(t, "start")
		end := rapid.IntRange(start, n).Draw(t, "end")

		want := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			want = append(want, dict[indices[i]])
		}

		filt := dictdecode.NewRangeFilter(start, end)
		target := []int{} // non-nil, so an empty range equals an empty want
		err := dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, false, nil, filt, nil, &target)
		require.NoError(t, err)
		assert.Equal(t, want, target)
	})
}

// Invariant: fast-path equivalence. All-ones validity in the optional
// kernel must match the required kernel's output.
func TestPropertyFastPathValidityAllOnes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 48).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}

		var required []int
		err := dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, false, nil, nil, nil, &required)
		require.NoError(t, err)

		allOnes := bitmask.NewBitmap()
		allOnes.AppendOnes(n)
		validity := allOnes.View()

		var optional []int
		validityOut := bitmask.NewBitmap()
		err = dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, true, &validity, nil, validityOut, &optional)
		require.NoError(t, err)
		assert.Equal(t, required, optional)
	})
}

// Invariant: fast-path equivalence for all-ones filters.
func TestPropertyFastPathFilterAllOnes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(0, 48).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}

		var unmasked []int
		err := dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, false, nil, nil, nil, &unmasked)
		require.NoError(t, err)

		allOnes := bitmask.NewBitmap()
		allOnes.AppendOnes(n)
		filt := dictdecode.NewMaskFilter(allOnes.View())

		var masked []int
		err = dictdecode.DecodeDict(encodeIndices(indices, bitWidthFor(len(dict))), dict, false, nil, filt, nil, &masked)
		require.NoError(t, err)
		assert.Equal(t, unmasked, masked)
	})
}

// Invariant: index validation. Any stream index >= D fails the whole call
// on the required path.
func TestPropertyOutOfBoundsIndexFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		n := rapid.IntRange(1, 32).Draw(t, "n")
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rapid.IntRange(0, len(dict)-1).Draw(t, "idx"))
		}
		badPos := rapid.IntRange(0, n-1).Draw(t, "badPos")
		indices[badPos] = uint32(len(dict)) // out of bounds by exactly one

		bitWidth := bitWidthFor(len(dict) + 1)
		var target []int
		err := dictdecode.DecodeDict(encodeIndices(indices, bitWidth), dict, false, nil, nil, nil, &target)
		assert.ErrorIs(t, err, dictdecode.ErrOutOfBoundsDictIndex)
		assert.Empty(t, target)
	})
}

// Invariant: empty-dict guard. A non-empty, non-filtered-out required stream
// against an empty dictionary always fails.
func TestPropertyEmptyDictGuard(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(t, "n")
		indices := make([]uint32, n) // all zero, dict has no index 0 to point to

		var dict []int
		var target []int
		err := dictdecode.DecodeDict(encodeIndices(indices, 1), dict, false, nil, nil, nil, &target)
		assert.ErrorIs(t, err, dictdecode.ErrOutOfBoundsDictIndex)
	})
}

// Invariant: round-trip + null padding for decodeMaskedOptional, with a
// stream mixing RLE and bit-packed runs and a non-trivial Mask filter
// layered over non-trivial validity -- the combination that exercises the
// RLE chunk path of the masked-optional kernel, where a filter-selected row
// can independently be null.
func TestPropertyMixedStreamMaskedOptionalMask(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		numValid := rapid.IntRange(0, 24).Draw(t, "numValid")
		numNull := rapid.IntRange(0, 24).Draw(t, "numNull")
		validBits := drawValidityWithCount(t, numValid, numNull)
		selectBits := drawBoolSlice(t, len(validBits), "select")

		indices, values := encodeMixedStream(t, dict, numValid)
		want, wantValidity := referenceDecode(dict, indices, validBits, selectBits)

		validity := maskOf(validBits)
		filt := dictdecode.NewMaskFilter(maskOf(selectBits))
		validityOut := bitmask.NewBitmap()
		var target []int
		err := dictdecode.DecodeDict(values, dict, true, &validity, filt, validityOut, &target)
		require.NoError(t, err)

		assert.Equal(t, want, target)
		gotValidity := validityOut.View()
		require.Equal(t, len(wantValidity), gotValidity.Len())
		for i, wv := range wantValidity {
			assert.Equal(t, wv, gotValidity.Get(i), "validity bit %d", i)
		}
	})
}

// Invariant: same as above, but with a Range filter -- decode_masked_optional
// is reached via dispatch's range-as-mask path (or decode_optional_dict for
// start == 0), and the RLE path must still null-pad independently of the
// filter.
func TestPropertyMixedStreamMaskedOptionalRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dict := drawDict(t)
		numValid := rapid.IntRange(0, 24).Draw(t, "numValid")
		numNull := rapid.IntRange(0, 24).Draw(t, "numNull")
		validBits := drawValidityWithCount(t, numValid, numNull)
		numRows := len(validBits)
		start := rapid.IntRange(0, numRows).Draw(t, "start")
		end := rapid.IntRange(start, numRows).Draw(t, "end")

		selectBits := make([]bool, numRows)
		for i := start; i < end; i++ {
			selectBits[i] = true
		}

		indices, values := encodeMixedStream(t, dict, numValid)
		want, wantValidity := referenceDecode(dict, indices, validBits, selectBits)

		validity := maskOf(validBits)
		filt := dictdecode.NewRangeFilter(start, end)
		validityOut := bitmask.NewBitmap()
		var target []int
		err := dictdecode.DecodeDict(values, dict, true, &validity, filt, validityOut, &target)
		require.NoError(t, err)

		assert.Equal(t, want, target)
		gotValidity := validityOut.View()
		require.Equal(t, len(wantValidity), gotValidity.Len())
		for i, wv := range wantValidity {
			assert.Equal(t, wv, gotValidity.Get(i), "validity bit %d", i)
		}
	})
}
