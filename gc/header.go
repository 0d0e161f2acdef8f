package gc

// Header is the first word of every object-tagged heap entity (spec §3).
// Layout: bits [0:6) object-type tag, bit 6 pinned-mark bit, bits [7:64)
// data field. Cons cells have no header — they are exactly two raw words.
type Header uint64

const (
	headerTypeBits = 6
	headerTypeMask = (1 << headerTypeBits) - 1

	headerPinnedMarkShift = headerTypeBits
	headerPinnedMarkMask  = 1 << headerPinnedMarkShift

	headerDataShift = headerPinnedMarkShift + 1
)

// ObjectType is the 6-bit dense tag stored in an object header.
type ObjectType uint8

const (
	ObjSimpleVector     ObjectType = iota // reference t-array
	ObjNumericArray                       // packed leaf numeric array
	ObjComplexArray                      // complex (non-simple) array
	ObjString
	ObjSymbol
	ObjStructureInstance
	ObjStandardInstance
	ObjFunctionReference
	ObjFunction // closure / funcallable instance / bare function
	ObjBignum
	ObjSingleFloat
	ObjDoubleFloat
	ObjLongFloat
	ObjComplexNumber
	ObjRatio
	ObjSIMDVector
	ObjThread
	ObjWeakPointer
	ObjFreelistEntry
	ObjUnboundValue
)

func (t ObjectType) String() string {
	names := [...]string{
		"simple-vector", "numeric-array", "complex-array", "string",
		"symbol", "structure-instance", "standard-instance",
		"function-reference", "function", "bignum", "single-float",
		"double-float", "long-float", "complex-number", "ratio",
		"simd-vector", "thread", "weak-pointer", "freelist-entry",
		"unbound-value",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown-object-type"
}

// NewHeader assembles a header word from its fields.
func NewHeader(t ObjectType, data uint64, pinnedMark bool) Header {
	h := uint64(t)&headerTypeMask | data<<headerDataShift
	if pinnedMark {
		h |= headerPinnedMarkMask
	}
	return Header(h)
}

// ObjectTag returns the object-type tag stored in the header.
func (h Header) ObjectTag() ObjectType {
	return ObjectType(uint64(h) & headerTypeMask)
}

// Data returns the type-specific data field.
func (h Header) Data() uint64 {
	return uint64(h) >> headerDataShift
}

// PinnedMarked reports the header's pinned-mark bit.
func (h Header) PinnedMarked() bool {
	return uint64(h)&headerPinnedMarkMask != 0
}

// WithPinnedMark returns a copy of h with the pinned-mark bit set to v.
func (h Header) WithPinnedMark(v bool) Header {
	if v {
		return h | Header(headerPinnedMarkMask)
	}
	return h &^ Header(headerPinnedMarkMask)
}

// header reads the first word at obj's address as a Header.
func (w *World) header(addr uintptr) Header {
	return Header(*(*uint64)(ptrAt(addr)))
}

func (w *World) setHeader(addr uintptr, h Header) {
	*(*uint64)(ptrAt(addr)) = uint64(h)
}
