package dictdecode

import (
	"math/bits"

	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/rle"
)

// decodeMaskedOptional appends filter.SetBits() values; among selected rows,
// null rows get B's zero value: nulls and a boolean row filter together.
func decodeMaskedOptional[B any](values *rle.Decoder, dict []B, filt, validity bitmask.BitMask) ([]B, error) {
	if filt.AllOnes() {
		return decodeOptional(values, dict, validity)
	}
	if validity.AllOnes() {
		return decodeMaskedRequired(values, dict, filt)
	}

	numValid := validity.SetBits()
	if len(dict) == 0 && numValid > 0 {
		return nil, ErrOutOfBoundsDictIndex
	}

	numRows := filt.SetBits()
	out := make([]B, numRows)
	written := 0
	numRowsLeft := numRows
	values.LimitTo(numValid)

	// outputValidity tracks, per written output row, whether it is non-null,
	// so the final pass below can zero the null ones; the hot loop writes
	// every selected row unconditionally, mirroring the optional kernel.
	outputValidity := bitmask.NewBitmap()

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
			numChunkValues, _ := validity.NthSetBitIndex(chunk.RLELength)

			var currentFilter, currentValidity bitmask.BitMask
			currentFilter, filt = filt.SplitAt(numChunkValues)
			currentValidity, validity = validity.SplitAt(numChunkValues)

			numChunkRows := currentFilter.SetBits()
			if numChunkRows > 0 {
				if chunk.RLEValue >= uint32(len(dict)) {
					return nil, ErrOutOfBoundsDictIndex
				}
				val := dict[chunk.RLEValue]
				for i := 0; i < numChunkValues; i++ {
					if !currentFilter.Get(i) {
						continue
					}
					out[written] = val
					if currentValidity.Get(i) {
						outputValidity.AppendOnes(1)
					} else {
						outputValidity.AppendZeros(1)
					}
					written++
				}
				numRowsLeft -= numChunkRows
			}

		case rle.ChunkBitpacked:
			sub := chunk.Bitpacked
			numChunkValues, _ := validity.NthSetBitIndex(sub.Len())

			var currentFilter, currentValidity bitmask.BitMask
			currentFilter, filt = filt.SplitAt(numChunkValues)
			currentValidity, validity = validity.SplitAt(numChunkValues)

			var ring [128]uint32
			ringOffset, numBuffered, bufferPart, skipValues := 0, 0, 0, 0

			process := func(f, v uint64) error {
				if f == 0 {
					skipValues += bits.OnesCount64(v)
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

				need := bits.OnesCount64(v)
				for numBuffered < need {
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
				ff, vv := f, v
				for ff != 0 {
					offset := bits.TrailingZeros64(ff)
					mask := (uint64(1) << uint(offset)) - 1
					numRead += bits.OnesCount64(vv & mask)
					vv >>= uint(offset)

					idx := ring[(ringOffset+numRead)%128]
					out[written+numWritten] = dict[idx]
					if vv&1 != 0 {
						outputValidity.AppendOnes(1)
					} else {
						outputValidity.AppendZeros(1)
					}
					numWritten++
					numRead += int(vv & 1)

					ff >>= uint(offset + 1)
					vv >>= 1
				}
				numRead += bits.OnesCount64(vv)

				ringOffset = (ringOffset + numRead) % 128
				numBuffered -= numRead
				written += numWritten
				numRowsLeft -= numWritten
				return nil
			}

			fIter := currentFilter.FastIterU56()
			vIter := currentValidity.FastIterU56()
			for {
				f, okF := fIter.Next()
				v, okV := vIter.Next()
				if !okF || !okV {
					break
				}
				if err := process(f, v); err != nil {
					return nil, err
				}
			}
			f, _ := fIter.Remainder()
			v, _ := vIter.Remainder()
			if err := process(f, v); err != nil {
				return nil, err
			}
		}
	}

	zeroNullRows(out, outputValidity.View())
	return out, nil
}
