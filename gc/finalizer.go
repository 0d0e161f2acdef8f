package gc

// ProcessFinalizers walks knownFinalizers (spec §4.7 "Finalizer
// processing") after the weak fixpoint has run: any weak pointer whose
// livep bit is now clear is unlinked from that list and prepended to
// pendingFinalizers for execution after the world resumes. The value
// RunWeakFixpoint captured before clearing the slot moves along with it,
// since oldspace — and the dead value it may point into — is unmapped
// before RunPendingFinalizers gets a chance to run.
func (w *World) ProcessFinalizers() {
	var stillKnown []uintptr
	for _, addr := range w.knownFinalizers {
		h := w.header(addr)
		if weakLivep(h) {
			stillKnown = append(stillKnown, addr)
			continue
		}
		w.pendingFinalizers = append([]uintptr{addr}, w.pendingFinalizers...)
		if w.pendingFinalizerValues == nil {
			w.pendingFinalizerValues = make(map[uintptr]Word)
		}
		w.pendingFinalizerValues[addr] = w.deadWeakValues[addr]
		delete(w.deadWeakValues, addr)
	}
	w.knownFinalizers = stillKnown
}

// RegisterFinalizer adds a weak pointer to the set tracked for
// finalization. Weak pointer creation is out of scope (spec §6); this is
// the one mutation callers make to that set directly.
func (w *World) RegisterFinalizer(weakPointer Word) {
	w.knownFinalizers = append(w.knownFinalizers, PointerField(weakPointer))
}

// RunPendingFinalizers invokes every queued finalizer after the
// stop-the-world phase has ended (spec §4.8 step 13). Each finalized
// weak pointer's finalizer slot is cleared immediately after its call
// returns so the finalized object is not inadvertently kept alive by a
// finalizer that captured it (spec §4.7). The value passed to the
// finalizer comes from pendingFinalizerValues, not a re-read of the
// weak pointer's value slot: that slot was cleared by RunWeakFixpoint,
// and the oldspace memory it used to reference is unmapped by now.
func (w *World) RunPendingFinalizers() {
	pending := w.pendingFinalizers
	w.pendingFinalizers = nil

	for _, addr := range pending {
		fn := readWord(wordAt(addr, weakSlotFinalizer))
		value := w.pendingFinalizerValues[addr]
		delete(w.pendingFinalizerValues, addr)
		if w.Supervisor != nil {
			w.Supervisor.InvokeFinalizer(fn, value)
		}
		writeWord(wordAt(addr, weakSlotFinalizer), 0)
	}
}

// PendingFinalizers reports the weak pointers currently queued for
// finalization, most-recently-queued first. It exists mainly so tests can
// observe spec §8 property 7 ("Finalizer at-most-once").
func (w *World) PendingFinalizers() []uintptr {
	return w.pendingFinalizers
}
