package rle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the stream ends in the middle of a run
// header or a run's payload bytes.
var ErrUnexpectedEOF = errors.New("rle: unexpected end of stream")

// Decoder lazily parses a hybrid RLE/bit-packed encoded byte stream into
// chunks, without materialising the decoded index sequence up front. The
// wire format is the Parquet one: each run starts with a ULEB128 header
// `(count << 1) | is_bit_packed`. An RLE run stores a single value in
// ceil(bitWidth/8) little-endian bytes, repeated count times. A bit-packed
// run stores count groups of 8 bitWidth-wide, LSB-first packed indices.
type Decoder struct {
	data      []byte
	bitWidth  int
	remaining int // indices not yet produced as chunks
	pos       int // byte offset of the next run header
}

// NewDecoder wraps data, holding numValues indices each bitWidth bits wide.
func NewDecoder(data []byte, bitWidth, numValues int) *Decoder {
	return &Decoder{data: data, bitWidth: bitWidth, remaining: numValues}
}

// Len reports the number of indices not yet produced.
func (d *Decoder) Len() int { return d.remaining }

// LimitTo clamps the number of indices the decoder will still produce. It
// never raises the remaining count.
func (d *Decoder) LimitTo(n int) {
	if n < d.remaining {
		d.remaining = n
	}
}

// NextChunk lazily parses and returns the next run. ok is false once the
// decoder has produced all of its indices (Len() is 0).
func (d *Decoder) NextChunk() (chunk Chunk, ok bool, err error) {
	if d.remaining == 0 {
		return Chunk{}, false, nil
	}
	if d.pos >= len(d.data) {
		return Chunk{}, false, fmt.Errorf("rle: reading run header: %w", ErrUnexpectedEOF)
	}

	header, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return Chunk{}, false, fmt.Errorf("rle: malformed run header: %w", ErrUnexpectedEOF)
	}
	d.pos += n

	isBitpacked := header&1 != 0
	count := int(header >> 1)

	if isBitpacked {
		numIndices := count * 8
		if numIndices > d.remaining {
			numIndices = d.remaining
		}
		byteLen := (numIndices*d.bitWidth + 7) / 8
		if d.pos+byteLen > len(d.data) {
			return Chunk{}, false, fmt.Errorf("rle: bit-packed run of %d indices: %w", numIndices, ErrUnexpectedEOF)
		}
		sub := newBitpackedDecoder(d.data[d.pos:d.pos+byteLen], d.bitWidth, numIndices)
		d.pos += byteLen
		d.remaining -= numIndices
		return Chunk{Kind: ChunkBitpacked, Bitpacked: sub}, true, nil
	}

	length := count
	if length > d.remaining {
		length = d.remaining
	}
	valueByteLen := (d.bitWidth + 7) / 8
	var value uint32
	if valueByteLen > 0 {
		if d.pos+valueByteLen > len(d.data) {
			return Chunk{}, false, fmt.Errorf("rle: rle run value: %w", ErrUnexpectedEOF)
		}
		for i := 0; i < valueByteLen; i++ {
			value |= uint32(d.data[d.pos+i]) << uint(8*i)
		}
		d.pos += valueByteLen
	}
	d.remaining -= length
	return Chunk{Kind: ChunkRLE, RLEValue: value, RLELength: length}, true, nil
}

// ChunkIter yields a decoder's remaining chunks.
type ChunkIter struct{ d *Decoder }

// ChunkIter returns an iterator over the decoder's remaining chunks.
func (d *Decoder) ChunkIter() *ChunkIter { return &ChunkIter{d: d} }

// Next returns the next chunk, mirroring Decoder.NextChunk.
func (it *ChunkIter) Next() (Chunk, bool, error) { return it.d.NextChunk() }
