package gc

// Weak pointer slot layout (spec §4.7): header, then key, value, link,
// finalizer-link, finalizer — five data slots, giving a total object size
// of 6 words, matching the fixed size named in spec §3.
const (
	weakSlotKey           = 1
	weakSlotValue         = 2
	weakSlotLink          = 3
	weakSlotFinalizerLink = 4
	weakSlotFinalizer     = 5
)

// livep bit: bit 0 of the weak pointer's header data field.
func weakLivep(h Header) bool    { return h.Data()&1 != 0 }
func weakWithLivep(h Header, v bool) Header {
	if v {
		return Header(uint64(h) | 1<<headerDataShift)
	}
	return Header(uint64(h) &^ (1 << headerDataShift))
}

// scanWeakPointer implements the "discovery" half of spec §4.7: any
// encountered weak pointer whose livep bit is set is appended to the
// worklist, and its finalizer-link/finalizer slots are scavenged
// immediately since the finalizer itself is a strong reference.
func (w *World) scanWeakPointer(addr uintptr, h Header) error {
	if weakLivep(h) {
		w.weakWorklist = append(w.weakWorklist, addr)
		if err := w.ScavengeSlot(addr, weakSlotFinalizerLink); err != nil {
			return err
		}
		if err := w.ScavengeSlot(addr, weakSlotFinalizer); err != nil {
			return err
		}
	}
	return nil
}

// WeakPointerP reports whether o is a weak pointer.
func (w *World) WeakPointerP(o Word) bool {
	if TagField(o) != TagObject {
		return false
	}
	return w.header(PointerField(o)).ObjectTag() == ObjWeakPointer
}

// WeakPointerValue returns a weak pointer's value slot and whether its key
// is (as of the most recent completed cycle) still live.
func (w *World) WeakPointerValue(o Word) (value Word, live bool) {
	addr := PointerField(o)
	h := w.header(addr)
	value = readWord(wordAt(addr, weakSlotValue))
	return value, weakLivep(h)
}

// keyLive examines a weak pointer's key per spec §4.7 "Key examination"
// and, if it is alive, returns the (possibly forwarded) key.
func (w *World) keyLive(key Word) (live bool, updated Word) {
	switch TagField(key) {
	case TagFixnumEven, TagFixnumOdd, TagCharacter, TagSingleFloat:
		return true, key
	case TagCons, TagObject:
		addr := PointerField(key)
		switch w.Layout.AddressTag(addr) {
		case RegionPinned, RegionWired:
			h := w.header(addr)
			return h.PinnedMarked() == w.pinnedMarkBit, key
		default:
			first := readWord(addr)
			if TagField(first) == TagGCForward {
				return true, WithTag(PointerField(first), TagField(key))
			}
			return false, key
		}
	default:
		return true, key
	}
}

// RunWeakFixpoint drains the weak-pointer worklist to a fixed point
// (spec §4.7 "Fixpoint"). drain is called after any pass that marks a
// previously-dead key live, so newly-reachable values get transported
// before the next pass re-examines remaining worklist entries.
func (w *World) RunWeakFixpoint(drain func() error) error {
	for {
		var survivors []uintptr
		progressed := false

		for _, addr := range w.weakWorklist {
			keySlot := wordAt(addr, weakSlotKey)
			key := readWord(keySlot)
			live, updated := w.keyLive(key)
			if live {
				if updated != key {
					writeWord(keySlot, updated)
				}
				if err := w.ScavengeSlot(addr, weakSlotValue); err != nil {
					return err
				}
				progressed = true
			} else {
				survivors = append(survivors, addr)
			}
		}
		w.weakWorklist = survivors

		if !progressed {
			break
		}
		if err := drain(); err != nil {
			return err
		}
	}

	// Every survivor's key is truly dead: clear key, value, and livep
	// (spec §4.7). Nothing treats a dead weak pointer's value as a root,
	// and oldspace is unmapped shortly after this runs, so the value is
	// captured here — the last point at which reading it is still
	// valid — for ProcessFinalizers to hand to any queued finalizer.
	for _, addr := range w.weakWorklist {
		if w.deadWeakValues == nil {
			w.deadWeakValues = make(map[uintptr]Word)
		}
		w.deadWeakValues[addr] = readWord(wordAt(addr, weakSlotValue))

		writeWord(wordAt(addr, weakSlotKey), 0)
		writeWord(wordAt(addr, weakSlotValue), 0)
		h := w.header(addr)
		w.setHeader(addr, weakWithLivep(h, false))
	}
	w.weakWorklist = nil
	return nil
}
