package dictdecode

import "github.com/cocosip/parqdict/bitmask"

// appendValidity grows validityOut per the dispatch table in section 4.1:
// the shape of (pageValidity, filter) determines whether the appended bits
// are all ones, a copy of page validity, or page validity at the rows a
// mask selects (one bit per selected row).
func appendValidity(pageValidity *bitmask.BitMask, filt *RowFilter, validityOut *bitmask.Bitmap, valuesLen int) {
	switch {
	case pageValidity == nil && filt == nil:
		validityOut.AppendOnes(valuesLen)
	case pageValidity == nil:
		validityOut.AppendOnes(filt.NumRows())
	case filt == nil:
		validityOut.AppendMask(*pageValidity)
	case filt.Kind == FilterRange:
		head, _ := pageValidity.SplitAt(filt.End)
		_, tail := head.SplitAt(filt.Start)
		validityOut.AppendMask(tail)
	default: // FilterMask
		for i := 0; i < filt.Mask.Len(); i++ {
			if !filt.Mask.Get(i) {
				continue
			}
			if pageValidity.Get(i) {
				validityOut.AppendOnes(1)
			} else {
				validityOut.AppendZeros(1)
			}
		}
	}
}

// constrainPageValidity trims pageValidity down to the region the kernel
// actually touches: the filter's max offset, or, when there is no filter,
// the page validity's own length (so nothing is trimmed).
func constrainPageValidity(valuesLen int, pageValidity *bitmask.BitMask, filt *RowFilter) *bitmask.BitMask {
	if pageValidity == nil {
		return nil
	}

	var numUnfiltered int
	switch {
	case filt != nil:
		numUnfiltered = filt.MaxOffset()
	default:
		numUnfiltered = pageValidity.Len()
	}

	if pageValidity.Len() > numUnfiltered {
		head, _ := pageValidity.SplitAt(numUnfiltered)
		return &head
	}
	v := *pageValidity
	return &v
}
