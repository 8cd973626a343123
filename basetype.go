package fit

// HostType tags the Go-level representation a BaseType decodes into.
type HostType int

const (
	HostInt8 HostType = iota
	HostUint8
	HostInt16
	HostUint16
	HostInt32
	HostUint32
	HostInt64
	HostUint64
	HostFloat32
	HostFloat64
	HostString
	HostByte
)

// BaseType is an immutable descriptor for one of the 16 FIT primitive
// types. ID's top bit flags endian sensitivity; its low 5 bits
// are the type number (TypeNumber). Lookups by id use the full ID byte.
type BaseType struct {
	ID       byte
	Name     string
	Size     int
	Signed   bool
	Numeric  bool
	Invalid  uint64 // sentinel bit pattern, masked to Size*8 bits (Size==8 uses all 64)
	Host     HostType
	ZeroIsZ  bool // "z" variants: 0 is the invalid sentinel, not all-ones
}

func (b BaseType) TypeNumber() byte   { return b.ID & 0x1F }
func (b BaseType) EndianSensitive() bool { return b.ID&0x80 != 0 }

func (b BaseType) mask() uint64 {
	if b.Size >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(b.Size*8)) - 1
}

// IsInvalidRaw reports whether a raw numeric reading equals this base
// type's invalid sentinel.
func (b BaseType) IsInvalidRaw(raw uint64) bool {
	return raw&b.mask() == b.Invalid&b.mask()
}

var baseTypeUint8 BaseType

var baseTypesByID = map[byte]BaseType{}
var baseTypesByName = map[string]BaseType{}

func registerBaseType(bt BaseType) {
	baseTypesByID[bt.ID] = bt
	baseTypesByName[bt.Name] = bt
}

func init() {
	registerBaseType(BaseType{ID: 0x00, Name: "enum", Size: 1, Numeric: true, Invalid: 0xFF, Host: HostUint8})
	registerBaseType(BaseType{ID: 0x01, Name: "sint8", Size: 1, Signed: true, Numeric: true, Invalid: 0x7F, Host: HostInt8})
	registerBaseType(BaseType{ID: 0x02, Name: "uint8", Size: 1, Numeric: true, Invalid: 0xFF, Host: HostUint8})
	registerBaseType(BaseType{ID: 0x83, Name: "sint16", Size: 2, Signed: true, Numeric: true, Invalid: 0x7FFF, Host: HostInt16})
	registerBaseType(BaseType{ID: 0x84, Name: "uint16", Size: 2, Numeric: true, Invalid: 0xFFFF, Host: HostUint16})
	registerBaseType(BaseType{ID: 0x85, Name: "sint32", Size: 4, Signed: true, Numeric: true, Invalid: 0x7FFFFFFF, Host: HostInt32})
	registerBaseType(BaseType{ID: 0x86, Name: "uint32", Size: 4, Numeric: true, Invalid: 0xFFFFFFFF, Host: HostUint32})
	registerBaseType(BaseType{ID: 0x07, Name: "string", Size: 1, Host: HostString})
	registerBaseType(BaseType{ID: 0x88, Name: "float32", Size: 4, Signed: true, Numeric: true, Invalid: 0xFFFFFFFF, Host: HostFloat32})
	registerBaseType(BaseType{ID: 0x89, Name: "float64", Size: 8, Signed: true, Numeric: true, Invalid: 0xFFFFFFFFFFFFFFFF, Host: HostFloat64})
	registerBaseType(BaseType{ID: 0x0A, Name: "uint8z", Size: 1, Numeric: true, Invalid: 0x00, ZeroIsZ: true, Host: HostUint8})
	registerBaseType(BaseType{ID: 0x8B, Name: "uint16z", Size: 2, Numeric: true, Invalid: 0x0000, ZeroIsZ: true, Host: HostUint16})
	registerBaseType(BaseType{ID: 0x8C, Name: "uint32z", Size: 4, Numeric: true, Invalid: 0x00000000, ZeroIsZ: true, Host: HostUint32})
	registerBaseType(BaseType{ID: 0x0D, Name: "byte", Size: 1, Numeric: true, Invalid: 0xFF, Host: HostByte})
	registerBaseType(BaseType{ID: 0x8E, Name: "sint64", Size: 8, Signed: true, Numeric: true, Invalid: 0x7FFFFFFFFFFFFFFF, Host: HostInt64})
	registerBaseType(BaseType{ID: 0x8F, Name: "uint64", Size: 8, Numeric: true, Invalid: 0xFFFFFFFFFFFFFFFF, Host: HostUint64})
	registerBaseType(BaseType{ID: 0x90, Name: "uint64z", Size: 8, Numeric: true, Invalid: 0x0000000000000000, ZeroIsZ: true, Host: HostUint64})

	baseTypeUint8 = baseTypesByID[0x02]
}

// LookupBaseType finds a base type by its wire id byte.
func LookupBaseType(id byte) (BaseType, bool) {
	bt, ok := baseTypesByID[id]
	return bt, ok
}

// LookupBaseTypeByName finds a base type by its symbolic name.
func LookupBaseTypeByName(name string) (BaseType, bool) {
	bt, ok := baseTypesByName[name]
	return bt, ok
}
