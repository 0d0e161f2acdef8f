package gc

// Slots reports the reference-carrying slot values of the object or
// cons named by word, without scavenging or mutating anything. It is
// the read-only counterpart of ScanWord's dispatch table, for diagnostic
// callers (heapgraph) that need to walk the current snapshot of the
// heap rather than participate in a collection cycle.
func (w *World) Slots(word Word) ([]Word, error) {
	tag := TagField(word)
	addr := PointerField(word)

	if tag == TagCons {
		return []Word{readWord(addr), readWord(wordAt(addr, 1))}, nil
	}
	if tag != TagObject {
		return nil, nil
	}

	h := w.header(addr)
	switch h.ObjectTag() {
	case ObjSimpleVector, ObjStructureInstance:
		return w.readSlotRange(addr, 1, uintptr(h.Data())), nil
	case ObjSymbol:
		return w.readSlotRange(addr, 1, 6), nil
	case ObjStandardInstance, ObjFunctionReference:
		return w.readSlotRange(addr, 1, 4), nil
	case ObjComplexNumber, ObjRatio:
		return w.readSlotRange(addr, 1, 3), nil
	case ObjWeakPointer:
		// The key is only a conditional root (spec §4.7); report it
		// alongside the value and finalizer so a heap-graph dump can
		// render it as a distinguishable (dashed) edge if it wants to.
		return []Word{
			readWord(wordAt(addr, weakSlotKey)),
			readWord(wordAt(addr, weakSlotValue)),
			readWord(wordAt(addr, weakSlotFinalizer)),
		}, nil
	case ObjThread:
		return w.readSlotRange(addr, threadSlotName, threadSlotMutexStack-threadSlotName+1), nil
	case ObjFunction:
		mcSize, poolSize, _ := unpackFunctionData(h.Data())
		poolBase := addr + (1+uintptr(mcSize))*uintptr(wordSize)
		return w.readSlotRange(poolBase, 0, uintptr(poolSize)), nil
	default:
		return nil, nil
	}
}

func (w *World) readSlotRange(addr uintptr, start, count uintptr) []Word {
	out := make([]Word, count)
	for i := uintptr(0); i < count; i++ {
		out[i] = readWord(wordAt(addr, start+i))
	}
	return out
}

// Kind reports the dynamic type of a cons/object word for diagnostic
// labeling, and whether word even carries one (immediates do not).
func (w *World) Kind(word Word) (ObjectType, bool) {
	if TagField(word) != TagObject {
		return 0, false
	}
	return w.header(PointerField(word)).ObjectTag(), true
}
