package gc

// ScanWord walks the reference slots of the object or cons named by word,
// scavenging each one (spec §4.3, scan). word must already be a newspace
// or pinned pointer — scan never transports word itself, only its slots.
func (w *World) ScanWord(word Word) error {
	tag := TagField(word)
	addr := PointerField(word)

	if tag == TagCons {
		return w.scanSlotRange(addr, 0, 2)
	}
	if tag != TagObject {
		return nil
	}

	h := w.header(addr)
	switch h.ObjectTag() {
	case ObjSimpleVector, ObjStructureInstance:
		return w.scanSlotRange(addr, 1, uintptr(h.Data()))

	case ObjSymbol:
		return w.scanSlotRange(addr, 1, 6)

	case ObjStandardInstance, ObjFunctionReference:
		return w.scanSlotRange(addr, 1, 4)

	case ObjComplexNumber, ObjRatio:
		return w.scanSlotRange(addr, 1, 3)

	case ObjComplexArray:
		// Four dimension/metadata slots; contents are not scanned
		// because the element type is a leaf (spec §4.3).
		return nil

	case ObjFunction:
		return w.scanFunction(addr, h)

	case ObjThread:
		return w.ScanThread(addr)

	case ObjWeakPointer:
		return w.scanWeakPointer(addr, h)

	case ObjNumericArray, ObjBignum, ObjSingleFloat, ObjDoubleFloat,
		ObjLongFloat, ObjSIMDVector, ObjUnboundValue, ObjString:
		// Leaf types: no reference slots.
		return nil

	case ObjFreelistEntry:
		// Never reachable from a root; scanning one would be a bug in
		// the caller, not a recoverable GC condition.
		return &ScanError{Op: "scan", Header: h, Addr: addr}

	default:
		return &ScanError{Op: "scan", Header: h, Addr: addr}
	}
}

func (w *World) scanSlotRange(addr uintptr, start, count uintptr) error {
	for i := uintptr(0); i < count; i++ {
		if err := w.ScavengeSlot(addr, start+i); err != nil {
			return err
		}
	}
	return nil
}

// scanFunction walks a function's constant pool, which follows its
// machine code in memory (spec §4.3). The machine code and GC-info table
// are raw bytes, never scanned.
func (w *World) scanFunction(addr uintptr, h Header) error {
	mcSize, poolSize, _ := unpackFunctionData(h.Data())
	poolBase := addr + (1+uintptr(mcSize))*uintptr(wordSize)
	for i := uint64(0); i < poolSize; i++ {
		slot := poolBase + uintptr(i)*uintptr(wordSize)
		old := readWord(slot)
		updated, err := w.Scavenge(old)
		if err != nil {
			return err
		}
		if updated != old {
			writeWord(slot, updated)
		}
	}
	return nil
}
