package dictdecode

// verifyBatch validates every index in a decoded batch against the
// dictionary size in one pass, amortising the bounds check so the
// subsequent dictionary lookups for the same batch can be unchecked.
func verifyBatch(idxs []uint32, dictLen int) error {
	bad := false
	d := uint32(dictLen)
	for _, idx := range idxs {
		bad = bad || idx >= d
	}
	if bad {
		return ErrOutOfBoundsDictIndex
	}
	return nil
}
