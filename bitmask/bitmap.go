package bitmask

import "github.com/cocosip/parqdict/internal/bitreader"

// Bitmap is an owned, growable packed bitmap. It backs the decoder's output
// validity buffer and is used to materialise a Range filter as a mask.
type Bitmap struct {
	data   []byte
	length int
}

// NewBitmap returns an empty bitmap.
func NewBitmap() *Bitmap { return &Bitmap{} }

// Len reports the number of bits appended so far.
func (m *Bitmap) Len() int { return m.length }

// Bytes exposes the packed backing storage.
func (m *Bitmap) Bytes() []byte { return m.data }

func (m *Bitmap) ensure(n int) {
	need := (n + 7) / 8
	for len(m.data) < need {
		m.data = append(m.data, 0)
	}
}

func (m *Bitmap) set(i int, v bool) {
	byteIdx, bitIdx := i/8, uint(i%8)
	if v {
		m.data[byteIdx] |= 1 << bitIdx
	} else {
		m.data[byteIdx] &^= 1 << bitIdx
	}
}

// AppendOnes appends n set bits.
func (m *Bitmap) AppendOnes(n int) {
	if n <= 0 {
		return
	}
	start := m.length
	m.length += n
	m.ensure(m.length)
	for i := 0; i < n; i++ {
		m.set(start+i, true)
	}
}

// AppendZeros appends n cleared bits.
func (m *Bitmap) AppendZeros(n int) {
	if n <= 0 {
		return
	}
	m.length += n
	m.ensure(m.length)
}

// AppendMask appends a copy of bm's bits.
func (m *Bitmap) AppendMask(bm BitMask) {
	start := m.length
	m.length += bm.Len()
	m.ensure(m.length)
	for i := 0; i < bm.Len(); i++ {
		if bitreader.ReadBits(bm.data, bm.offset+i, 1) != 0 {
			m.set(start+i, true)
		}
	}
}

// View returns a read-only BitMask over the bitmap's current contents.
func (m *Bitmap) View() BitMask { return BitMask{data: m.data, length: m.length} }
