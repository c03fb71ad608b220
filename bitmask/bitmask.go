// Package bitmask implements the validity/filter bitmap views used across
// the dictionary decoder: a borrowed, read-only BitMask for page validity
// and row filters, and an owned, growable Bitmap for building output
// validity.
package bitmask

import (
	"math/bits"

	"github.com/cocosip/parqdict/internal/bitreader"
)

// BitMask is a borrowed view over a packed bitmap. Bit i (LSB-first within
// each byte) set means row i is selected or non-null, depending on context.
// Zero value is the empty mask.
type BitMask struct {
	data   []byte
	offset int // absolute bit offset of index 0 into data
	length int
}

// FromBytes wraps a packed bitmap of the given bit length. length must not
// exceed the number of bits backing data.
func FromBytes(data []byte, length int) BitMask {
	return BitMask{data: data, length: length}
}

// Len reports the number of bits the mask covers.
func (b BitMask) Len() int { return b.length }

// IsEmpty reports whether the mask covers zero bits.
func (b BitMask) IsEmpty() bool { return b.length == 0 }

// SetBits counts the set bits in the mask.
func (b BitMask) SetBits() int {
	count := 0
	pos := 0
	for pos < b.length {
		n := 64
		if b.length-pos < n {
			n = b.length - pos
		}
		w := bitreader.ReadBits(b.data, b.offset+pos, n)
		count += bits.OnesCount64(w)
		pos += n
	}
	return count
}

// AllOnes reports whether every bit in the mask is set.
func (b BitMask) AllOnes() bool { return b.SetBits() == b.length }

// Get returns the bit at position i.
func (b BitMask) Get(i int) bool {
	return bitreader.ReadBits(b.data, b.offset+i, 1) != 0
}

// SplitAt divides the mask into [0,n) and [n,length). n is clamped to the
// mask's length.
func (b BitMask) SplitAt(n int) (head, tail BitMask) {
	if n > b.length {
		n = b.length
	}
	if n < 0 {
		n = 0
	}
	head = BitMask{data: b.data, offset: b.offset, length: n}
	tail = BitMask{data: b.data, offset: b.offset + n, length: b.length - n}
	return head, tail
}

// NthSetBitIndex returns the number of leading bits containing exactly k set
// bits — i.e. one past the position of the k-th set bit. If the mask has
// fewer than k set bits, it returns the mask's length and false.
func (b BitMask) NthSetBitIndex(k int) (int, bool) {
	if k <= 0 {
		return 0, true
	}
	left := k
	pos := 0
	for pos < b.length {
		n := 64
		if b.length-pos < n {
			n = b.length - pos
		}
		w := bitreader.ReadBits(b.data, b.offset+pos, n)
		c := bits.OnesCount64(w)
		if c < left {
			left -= c
			pos += n
			continue
		}
		for i := 0; i < n; i++ {
			if w&(uint64(1)<<uint(i)) != 0 {
				left--
				if left == 0 {
					return pos + i + 1, true
				}
			}
		}
	}
	return b.length, false
}

// And returns the bitwise AND of a and b, keeping only the bits set in both
// over their common length (typically page validity gated by a row mask).
func And(a, b BitMask) BitMask {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	out := NewBitmap()
	out.AppendZeros(n)
	for i := 0; i < n; i++ {
		if a.Get(i) && b.Get(i) {
			out.set(i, true)
		}
	}
	return out.View()
}

// MaskFromRange materialises a Range(start, end) row filter as a mask of
// length end, with bits [start, end) set.
func MaskFromRange(start, end int) BitMask {
	out := NewBitmap()
	out.AppendZeros(start)
	out.AppendOnes(end - start)
	return out.View()
}

// U56Iter walks a BitMask 56 bits at a time, leaving headroom in a 64-bit
// word for the popcount-driven ring accounting the dictionary kernels do
// per word.
type U56Iter struct {
	mask BitMask
	pos  int
}

// FastIterU56 returns an iterator over full 56-bit words of the mask.
func (b BitMask) FastIterU56() *U56Iter { return &U56Iter{mask: b} }

// Next returns the next full 56-bit word, or false once fewer than 56 bits
// remain.
func (it *U56Iter) Next() (uint64, bool) {
	if it.mask.length-it.pos < 56 {
		return 0, false
	}
	w := bitreader.ReadBits(it.mask.data, it.mask.offset+it.pos, 56)
	it.pos += 56
	return w, true
}

// Remainder returns the final word of fewer than 56 bits, if any, along with
// its width. Call it once Next has returned false.
func (it *U56Iter) Remainder() (uint64, int) {
	n := it.mask.length - it.pos
	if n <= 0 {
		return 0, 0
	}
	w := bitreader.ReadBits(it.mask.data, it.mask.offset+it.pos, n)
	it.pos += n
	return w, n
}
