package dictdecode

import (
	"math/bits"

	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/rle"
)

// decodeOptional appends validity.Len() slots: one materialised value per
// set bit of validity, zero value at each cleared bit.
func decodeOptional[B any](values *rle.Decoder, dict []B, validity bitmask.BitMask) ([]B, error) {
	numValid := validity.SetBits()
	if numValid == validity.Len() {
		values.LimitTo(validity.Len())
		return decodeRequired(values, dict)
	}
	if len(dict) == 0 && numValid > 0 {
		return nil, ErrOutOfBoundsDictIndex
	}

	fullValidity := validity
	out := make([]B, validity.Len()) // zero value already serves as the null padding
	pos := 0
	values.LimitTo(numValid)

	for values.Len() > 0 {
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
			numChunkRows, _ := validity.NthSetBitIndex(chunk.RLELength)
			_, validity = validity.SplitAt(numChunkRows)

			if chunk.RLEValue >= uint32(len(dict)) {
				return nil, ErrOutOfBoundsDictIndex
			}
			val := dict[chunk.RLEValue]
			// written unconditionally, including at null rows within this
			// span; the final validity-masking pass below zeroes them.
			for i := 0; i < numChunkRows; i++ {
				out[pos+i] = val
			}
			pos += numChunkRows

		case rle.ChunkBitpacked:
			sub := chunk.Bitpacked
			var ring [128]uint32
			ringOffset, numBuffered, bufferPart := 0, 0, 0

			refill := func(need int) (bool, error) {
				for numBuffered < need {
					var batch [32]uint32
					filled, hasMore := sub.NextBatch(&batch)
					if !hasMore {
						return false, nil
					}
					if err := verifyBatch(batch[:filled], len(dict)); err != nil {
						return false, err
					}
					copy(ring[bufferPart*32:bufferPart*32+32], batch[:])
					numBuffered += filled
					bufferPart = (bufferPart + 1) % 4
				}
				return true, nil
			}

			numDone := 0
			it := validity.FastIterU56()
			for {
				v, hasWord := it.Next()
				if !hasWord {
					break
				}
				okRefill, err := refill(bits.OnesCount64(v))
				if err != nil {
					return nil, err
				}
				if !okRefill {
					break
				}
				numRead := 0
				for i := 0; i < 56; i++ {
					idx := ring[(ringOffset+numRead)%128]
					out[pos+i] = dict[idx]
					numRead += int((v >> uint(i)) & 1)
				}
				ringOffset = (ringOffset + numRead) % 128
				numBuffered -= numRead
				pos += 56
				numDone += 56
			}

			var rest bitmask.BitMask
			_, rest = validity.SplitAt(numDone)
			validity = rest

			numDecoderRemaining := numBuffered + sub.Len()
			decoderLimit, _ := validity.NthSetBitIndex(numDecoderRemaining)
			currentValidity, rest2 := validity.SplitAt(decoderLimit)
			validity = rest2

			v, _ := currentValidity.FastIterU56().Remainder()
			if _, err := refill(bits.OnesCount64(v)); err != nil {
				return nil, err
			}

			numRead := 0
			for i := 0; i < decoderLimit; i++ {
				idx := ring[(ringOffset+numRead)%128]
				out[pos+i] = dict[idx]
				numRead += int((v >> uint(i)) & 1)
			}
			ringOffset = (ringOffset + numRead) % 128
			numBuffered -= numRead
			pos += decoderLimit
		}
	}

	zeroNullRows(out, fullValidity)
	return out, nil
}

// zeroNullRows re-imposes B's zero value at every cleared bit of validity.
// The hot loops above write unconditionally at every output slot — a
// buffered (already validated) dictionary value may land in a null row's
// slot — so this single pass restores the stricter null-padding guarantee
// without branching inside the ring walk.
func zeroNullRows[B any](out []B, validity bitmask.BitMask) {
	var zero B
	for i := 0; i < validity.Len(); i++ {
		if !validity.Get(i) {
			out[i] = zero
		}
	}
}
