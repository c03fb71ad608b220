// Package dictdecode implements the dictionary-encoded column decoder: it
// turns a hybrid RLE/bit-packed index stream, a per-page dictionary,
// optional page validity, and an optional row filter into a densely packed
// sequence of materialised values and an aligned validity bitmap.
package dictdecode

import "errors"

// ErrOutOfBoundsDictIndex is the single error kind the decoder surfaces: a
// stream index was >= len(dict), or the dictionary was empty while the
// stream still had to produce a value.
var ErrOutOfBoundsDictIndex = errors.New("dictdecode: dictionary index out of bounds")
