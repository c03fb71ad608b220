package dictdecode

import "github.com/cocosip/parqdict/bitmask"

// FilterKind distinguishes the two row-filter shapes a caller may supply.
type FilterKind int

const (
	// FilterRange selects a contiguous half-open row range.
	FilterRange FilterKind = iota
	// FilterMask selects rows via an arbitrary boolean bitmap.
	FilterMask
)

// RowFilter is a caller-supplied row selection: either a contiguous range or
// an arbitrary boolean mask. The zero value is not a valid filter; use
// NewRangeFilter or NewMaskFilter.
type RowFilter struct {
	Kind  FilterKind
	Start int
	End   int
	Mask  bitmask.BitMask
}

// NewRangeFilter selects rows [start, end).
func NewRangeFilter(start, end int) *RowFilter {
	return &RowFilter{Kind: FilterRange, Start: start, End: end}
}

// NewMaskFilter selects rows at the set bits of mask.
func NewMaskFilter(mask bitmask.BitMask) *RowFilter {
	return &RowFilter{Kind: FilterMask, Mask: mask}
}

// NumRows reports how many output rows this filter selects.
func (f *RowFilter) NumRows() int {
	if f.Kind == FilterRange {
		return f.End - f.Start
	}
	return f.Mask.SetBits()
}

// MaxOffset reports one past the highest row index this filter can touch.
func (f *RowFilter) MaxOffset() int {
	if f.Kind == FilterRange {
		return f.End
	}
	return f.Mask.Len()
}

// AsMask materialises the filter as a BitMask, building one from the range
// bounds when the filter is a Range.
func (f *RowFilter) AsMask() bitmask.BitMask {
	if f.Kind == FilterMask {
		return f.Mask
	}
	return bitmask.MaskFromRange(f.Start, f.End)
}
