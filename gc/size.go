package gc

import "fmt"

// ScanError reports an unrecognized object tag encountered while sizing,
// scanning, or transporting an object — spec §4.1's "fatal, triggers
// panic" condition, surfaced here as a typed error the caller decides
// whether to turn into a panic (see error.go, fatal).
type ScanError struct {
	Op     string
	Header Header
	Addr   uintptr
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("gc: %s: unrecognized object tag %d at %#x (header=%#x)",
		e.Op, e.Header.ObjectTag(), e.Addr, uint64(e.Header))
}

// Function header data sub-fields: mc_size (machine code, words),
// pool_size (constant pool, words), gc_info_size (per-PC metadata, words).
// Packed into the 57-bit data field as mc(24) | pool(20) | gcinfo(13).
const (
	fnMCSizeBits     = 24
	fnPoolSizeBits   = 20
	fnGCInfoSizeBits = 13

	fnPoolShift   = fnGCInfoSizeBits
	fnMCShift     = fnGCInfoSizeBits + fnPoolSizeBits
	fnGCInfoMask  = (uint64(1) << fnGCInfoSizeBits) - 1
	fnPoolMask    = (uint64(1) << fnPoolSizeBits) - 1
	fnMCMask      = (uint64(1) << fnMCSizeBits) - 1
)

// PackFunctionData packs the three size sub-fields into a header data field.
func PackFunctionData(mcSize, poolSize, gcInfoSize uint64) uint64 {
	return (mcSize&fnMCMask)<<fnMCShift | (poolSize&fnPoolMask)<<fnPoolShift | (gcInfoSize & fnGCInfoMask)
}

func unpackFunctionData(data uint64) (mcSize, poolSize, gcInfoSize uint64) {
	mcSize = (data >> fnMCShift) & fnMCMask
	poolSize = (data >> fnPoolShift) & fnPoolMask
	gcInfoSize = data & fnGCInfoMask
	return
}

// PackNumericArrayData packs a packed numeric array's element count and
// per-element bit width into a header data field.
func PackNumericArrayData(length uint64, elementBits uint8) uint64 {
	return length<<8 | uint64(elementBits)
}

func unpackNumericArrayData(data uint64) (length uint64, elementBits uint8) {
	return data >> 8, uint8(data & 0xFF)
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// ObjectSize returns an object's size in 8-byte words, derived purely from
// its header (spec §3 "Size derivation"). It returns a *ScanError if the
// header names an unrecognized object type.
func ObjectSize(h Header, addr uintptr) (uint64, error) {
	switch h.ObjectTag() {
	case ObjSimpleVector, ObjStructureInstance:
		return 1 + h.Data(), nil
	case ObjNumericArray:
		length, bits := unpackNumericArrayData(h.Data())
		return 1 + ceilDiv(length*uint64(bits), 64), nil
	case ObjComplexArray:
		return 1 + 4, nil
	case ObjString:
		return 1 + ceilDiv(h.Data(), 8), nil
	case ObjSymbol:
		return 1 + 6, nil
	case ObjStandardInstance, ObjFunctionReference:
		return 1 + 4, nil
	case ObjComplexNumber, ObjRatio:
		return 1 + 3, nil
	case ObjFunction:
		mc, pool, gcinfo := unpackFunctionData(h.Data())
		return 1 + mc + pool + gcinfo, nil
	case ObjBignum:
		return 1 + h.Data(), nil
	case ObjSingleFloat, ObjDoubleFloat:
		return 2, nil
	case ObjLongFloat:
		return 1 + h.Data(), nil
	case ObjSIMDVector:
		return 1 + h.Data(), nil
	case ObjThread:
		return threadWords, nil
	case ObjWeakPointer:
		return 1 + 5, nil
	case ObjFreelistEntry:
		return h.Data(), nil
	case ObjUnboundValue:
		return 2, nil
	default:
		return 0, &ScanError{Op: "object-size", Header: h, Addr: addr}
	}
}
