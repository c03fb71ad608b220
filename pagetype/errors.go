// Package pagetype catalogs the fixed-width physical types a dictionary
// page's values may be stored as, so a driver can resolve a column's
// on-disk type name to the byte width dictionary decoding needs.
package pagetype

import "errors"

// ErrPhysicalTypeNotFound is returned by Get when no type is known under the
// given name or code.
var ErrPhysicalTypeNotFound = errors.New("pagetype: physical type not found")
