package dictdecode

import (
	"math/bits"

	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/rle"
)

// decodeMaskedRequired appends filter.SetBits() values in row order, skipping
// filtered-out rows: no nulls, a boolean row filter.
func decodeMaskedRequired[B any](values *rle.Decoder, dict []B, filt bitmask.BitMask) ([]B, error) {
	if filt.AllOnes() {
		values.LimitTo(filt.Len())
		return decodeRequired(values, dict)
	}
	if len(dict) == 0 && filt.Len() > 0 {
		return nil, ErrOutOfBoundsDictIndex
	}

	numRows := filt.SetBits()
	out := make([]B, numRows)
	written := 0
	numRowsLeft := numRows

	values.LimitTo(filt.Len())

	for values.Len() > 0 && numRowsLeft > 0 {
		chunk, ok, err := values.NextChunk()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch chunk.Kind {
		case rle.ChunkRLE:
			if chunk.RLELength == 0 {
				continue
			}
			size := chunk.RLELength
			if size > filt.Len() {
				size = filt.Len()
			}
			var currentFilter bitmask.BitMask
			currentFilter, filt = filt.SplitAt(size)
			numChunkRows := currentFilter.SetBits()
			if numChunkRows > 0 {
				if chunk.RLEValue >= uint32(len(dict)) {
					return nil, ErrOutOfBoundsDictIndex
				}
				val := dict[chunk.RLEValue]
				for i := 0; i < numChunkRows; i++ {
					out[written+i] = val
				}
				written += numChunkRows
				numRowsLeft -= numChunkRows
			}

		case rle.ChunkBitpacked:
			sub := chunk.Bitpacked
			size := sub.Len()
			if size > filt.Len() {
				size = filt.Len()
			}
			var currentFilter bitmask.BitMask
			currentFilter, filt = filt.SplitAt(size)

			var ring [128]uint32
			ringOffset, numBuffered, bufferPart, skipValues := 0, 0, 0, 0

			process := func(f uint64, length int) error {
				if f == 0 {
					skipValues += length
					return nil
				}

				skipBuffered := skipValues
				if skipBuffered > numBuffered {
					skipBuffered = numBuffered
				}
				ringOffset = (ringOffset + skipBuffered) % 128
				numBuffered -= skipBuffered
				skipValues -= skipBuffered

				sub.SkipChunks(skipValues / 32)
				skipValues %= 32

				for numBuffered < length {
					var batch [32]uint32
					filled, hasMore := sub.NextBatch(&batch)
					if !hasMore {
						break
					}
					if err := verifyBatch(batch[:filled], len(dict)); err != nil {
						return err
					}
					skipChunkValues := skipValues
					if skipChunkValues > filled {
						skipChunkValues = filled
					}
					ringOffset = (ringOffset + skipChunkValues) % 128
					copy(ring[bufferPart*32:bufferPart*32+32], batch[:])
					numBuffered += filled - skipChunkValues
					skipValues -= skipChunkValues
					bufferPart = (bufferPart + 1) % 4
				}

				numRead, numWritten := 0, 0
				for f != 0 {
					offset := bits.TrailingZeros64(f)
					numRead += offset
					idx := ring[(ringOffset+numRead)%128]
					out[written+numWritten] = dict[idx]
					numWritten++
					numRead++
					f >>= uint(offset + 1)
				}

				ringOffset = (ringOffset + length) % 128
				numBuffered -= length
				written += numWritten
				numRowsLeft -= numWritten
				return nil
			}

			it := currentFilter.FastIterU56()
			for {
				f, hasWord := it.Next()
				if !hasWord {
					break
				}
				if err := process(f, 56); err != nil {
					return nil, err
				}
			}
			f, fl := it.Remainder()
			if fl > 0 {
				if err := process(f, fl); err != nil {
					return nil, err
				}
			}
		}
	}

	return out, nil
}
