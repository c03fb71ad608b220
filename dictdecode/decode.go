package dictdecode

import (
	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/rle"
)

// DecodeDict is the decoder's entry point. It appends the decoded rows for
// one dictionary-encoded data page to targetOut, growing validityOut first
// when isOptional is true.
//
// dict must have fewer than 2^32 entries (indices are 32-bit). When filt is
// a Range, Start must be <= End. pageValidity, when non-nil, must cover
// every row index the call can touch.
//
// On success, len(*targetOut) grows by filt.NumRows(); when filt is nil, by
// pageValidity.Len() if pageValidity is non-nil, else by values.Len(). If
// isOptional, validityOut grows by the same amount. On
// error, *targetOut is left untouched; validityOut may already have grown,
// since the caller is expected to abandon the whole page on error.
func DecodeDict[B any](
	values *rle.Decoder,
	dict []B,
	isOptional bool,
	pageValidity *bitmask.BitMask,
	filt *RowFilter,
	validityOut *bitmask.Bitmap,
	targetOut *[]B,
) error {
	if isOptional {
		appendValidity(pageValidity, filt, validityOut, values.Len())
	}

	constrained := constrainPageValidity(values.Len(), pageValidity, filt)

	out, err := dispatch(values, dict, filt, constrained)
	if err != nil {
		return err
	}

	*targetOut = append(*targetOut, out...)
	return nil
}
