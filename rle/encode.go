package rle

import (
	"encoding/binary"

	"github.com/cocosip/parqdict/internal/bitreader"
)

// EncodeRLERun appends an RLE run to dst: a value repeated length times,
// stored in ceil(bitWidth/8) little-endian bytes.
func EncodeRLERun(dst []byte, value uint32, length, bitWidth int) []byte {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(length)<<1)
	dst = append(dst, hdr[:n]...)

	valueBytes := (bitWidth + 7) / 8
	for i := 0; i < valueBytes; i++ {
		dst = append(dst, byte(value>>uint(8*i)))
	}
	return dst
}

// EncodeBitpackedRun appends a bit-packed run of indices to dst. len(indices)
// must be a multiple of 8, matching the wire format's group-of-8 run header.
func EncodeBitpackedRun(dst []byte, indices []uint32, bitWidth int) []byte {
	if len(indices)%8 != 0 {
		panic("rle: bit-packed run length must be a multiple of 8")
	}
	numGroups := len(indices) / 8

	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(numGroups)<<1|1)
	dst = append(dst, hdr[:n]...)

	bitLen := len(indices) * bitWidth
	packed := make([]byte, (bitLen+7)/8)
	bitPos := 0
	for _, idx := range indices {
		bitreader.WriteBits(packed, bitPos, bitWidth, uint64(idx))
		bitPos += bitWidth
	}
	return append(dst, packed...)
}
