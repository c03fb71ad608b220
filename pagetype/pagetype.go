package pagetype

// PhysicalType describes a fixed-width physical value type a dictionary page
// may materialise: its on-disk byte width and the short code used alongside
// its name to look it up.
type PhysicalType struct {
	name      string
	code      string
	byteWidth int
}

// Name is the type's canonical name, e.g. "INT64".
func (p *PhysicalType) Name() string { return p.name }

// Code is a short lookup alias, e.g. "i64".
func (p *PhysicalType) Code() string { return p.code }

// ByteWidth is the size in bytes of one materialised value.
func (p *PhysicalType) ByteWidth() int { return p.byteWidth }

// The physical types a dictionary page's values may be stored as. This set is
// closed: Parquet dictionary pages never introduce a new fixed-width type at
// runtime, so there is no Register API, only this fixed table.
var (
	Int32   = &PhysicalType{name: "INT32", code: "i32", byteWidth: 4}
	Int64   = &PhysicalType{name: "INT64", code: "i64", byteWidth: 8}
	Float32 = &PhysicalType{name: "FLOAT", code: "f32", byteWidth: 4}
	Float64 = &PhysicalType{name: "DOUBLE", code: "f64", byteWidth: 8}
	Fixed16 = &PhysicalType{name: "FIXED_LEN_BYTE_ARRAY_16", code: "fx16", byteWidth: 16}

	all = [...]*PhysicalType{Int32, Int64, Float32, Float64, Fixed16}

	byKey = buildIndex()
)

func buildIndex() map[string]*PhysicalType {
	m := make(map[string]*PhysicalType, 2*len(all))
	for _, t := range all {
		m[t.name] = t
		m[t.code] = t
	}
	return m
}

// Get resolves a physical type by its name or its short code.
func Get(nameOrCode string) (*PhysicalType, error) {
	t, ok := byKey[nameOrCode]
	if !ok {
		return nil, ErrPhysicalTypeNotFound
	}
	return t, nil
}

// List returns the fixed set of known physical types, in declaration order.
func List() []*PhysicalType {
	out := make([]*PhysicalType, len(all))
	copy(out, all[:])
	return out
}
