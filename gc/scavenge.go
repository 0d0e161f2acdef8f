package gc

// Scavenge updates a single tagged word, the collector's most basic
// operation (spec §4.3):
//   - immediates are returned unchanged;
//   - a cons/object pointer already in newspace is returned unchanged;
//   - a cons/object pointer still in oldspace is transported;
//   - a pinned pointer is marked in place and returned unchanged;
//   - a stack pointer is returned unchanged (stack roots are handled by
//     the stack walker, not here).
func (w *World) Scavenge(word Word) (Word, error) {
	tag := TagField(word)
	switch tag {
	case TagCons, TagObject:
		addr := PointerField(word)
		switch w.Layout.AddressTag(addr) {
		case RegionPinned, RegionWired:
			if err := w.MarkPinned(word); err != nil {
				return word, err
			}
			return word, nil
		case RegionStack:
			return word, nil
		default: // general or cons copying region
			region := w.regionFor(tag)
			if region.inNewspace(addr) {
				return word, nil
			}
			return w.Transport(word)
		}
	default:
		// Immediates, gc-forward (never a live value), dx-root-object
		// (handled by the stack walker) all pass through unchanged.
		return word, nil
	}
}

// ScavengeSlot re-reads the word at index i from addr, scavenges it, and
// writes the result back only if it changed. The conditional write avoids
// a store into a live heap slot that a concurrent, non-mutating observer
// (e.g. a debugger sampling memory) could otherwise see in a half-updated
// state (spec §5, "Suspension points").
func (w *World) ScavengeSlot(addr uintptr, i uintptr) error {
	slot := wordAt(addr, i)
	old := readWord(slot)
	updated, err := w.Scavenge(old)
	if err != nil {
		return err
	}
	if updated != old {
		writeWord(slot, updated)
	}
	return nil
}
