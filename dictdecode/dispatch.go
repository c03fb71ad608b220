package dictdecode

import (
	"github.com/cocosip/parqdict/bitmask"
	"github.com/cocosip/parqdict/rle"
)

// dispatch classifies the call by (filter, pageValidity) and routes to one
// of the four kernels, per the table in the dispatch design.
func dispatch[B any](values *rle.Decoder, dict []B, filt *RowFilter, pageValidity *bitmask.BitMask) ([]B, error) {
	switch {
	case filt == nil && pageValidity == nil:
		return decodeRequired(values, dict)

	case filt != nil && filt.Kind == FilterRange && filt.Start == 0 && pageValidity == nil:
		values.LimitTo(filt.End)
		return decodeRequired(values, dict)

	case filt == nil && pageValidity != nil:
		return decodeOptional(values, dict, *pageValidity)

	case filt != nil && filt.Kind == FilterRange && filt.Start == 0 && pageValidity != nil:
		// page validity is already constrained to the range by the caller
		return decodeOptional(values, dict, *pageValidity)

	case filt != nil && filt.Kind == FilterMask && pageValidity == nil:
		return decodeMaskedRequired(values, dict, filt.Mask)

	case filt != nil && filt.Kind == FilterMask && pageValidity != nil:
		return decodeMaskedOptional(values, dict, filt.Mask, *pageValidity)

	case filt != nil && filt.Kind == FilterRange && pageValidity == nil: // start > 0
		return decodeMaskedRequired(values, dict, filt.AsMask())

	default: // Range, start > 0, with page validity
		return decodeMaskedOptional(values, dict, filt.AsMask(), *pageValidity)
	}
}
