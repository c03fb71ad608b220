package rle

import "github.com/cocosip/parqdict/internal/bitreader"

// BitpackedDecoder unpacks fixed-width indices from one bit-packed run. It
// hands them out in batches of 32, the granularity the dictionary kernels'
// ring buffer is built around.
type BitpackedDecoder struct {
	data     []byte
	bitWidth int
	count    int // indices not yet handed out
	bitPos   int // absolute bit offset of the next unread index
}

func newBitpackedDecoder(data []byte, bitWidth, count int) *BitpackedDecoder {
	return &BitpackedDecoder{data: data, bitWidth: bitWidth, count: count}
}

// Len reports how many indices remain in this run.
func (d *BitpackedDecoder) Len() int { return d.count }

// NextBatch fills up to 32 indices into batch, returning how many were
// written. ok is false once the run is exhausted; filled may be less than 32
// on the final batch.
func (d *BitpackedDecoder) NextBatch(batch *[32]uint32) (filled int, ok bool) {
	if d.count == 0 {
		return 0, false
	}
	n := 32
	if d.count < n {
		n = d.count
	}
	for i := 0; i < n; i++ {
		batch[i] = uint32(bitreader.ReadBits(d.data, d.bitPos, d.bitWidth))
		d.bitPos += d.bitWidth
	}
	d.count -= n
	return n, true
}

// SkipChunks elides k whole 32-index batches without unpacking them.
func (d *BitpackedDecoder) SkipChunks(k int) {
	if k <= 0 {
		return
	}
	n := k * 32
	if n > d.count {
		n = d.count
	}
	d.bitPos += n * d.bitWidth
	d.count -= n
}
