package dictdecode

import "github.com/cocosip/parqdict/rle"

// decodeRequired appends exactly values.Len() dictionary values: no nulls,
// no filter.
func decodeRequired[B any](values *rle.Decoder, dict []B) ([]B, error) {
	if len(dict) == 0 && values.Len() > 0 {
		return nil, ErrOutOfBoundsDictIndex
	}

	out := make([]B, values.Len())
	pos := 0

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
			if chunk.RLEValue >= uint32(len(dict)) {
				return nil, ErrOutOfBoundsDictIndex
			}
			val := dict[chunk.RLEValue]
			for i := 0; i < chunk.RLELength; i++ {
				out[pos+i] = val
			}
			pos += chunk.RLELength

		case rle.ChunkBitpacked:
			sub := chunk.Bitpacked
			var batch [32]uint32
			for {
				filled, hasMore := sub.NextBatch(&batch)
				if !hasMore {
					break
				}
				if err := verifyBatch(batch[:filled], len(dict)); err != nil {
					return nil, err
				}
				for i := 0; i < filled; i++ {
					out[pos+i] = dict[batch[i]]
				}
				pos += filled
			}
		}
	}

	return out, nil
}
