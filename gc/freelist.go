package gc

// freelistSlotNext is the slot holding the link to the next free block in
// the region (spec glossary, "Freelist entry").
const freelistSlotNext = 1

// RebuildFreelist walks a pinned-region extent object by object and
// rebuilds its freelist from scratch, coalescing adjacent unmarked runs
// into single entries (spec §4.6 "Pinned-area sweep"). head names the
// region's global freelist-head slot (wired or pinned).
//
// A pinned allocation occupies an even number of words, so an object
// whose ObjectSize is odd is rounded up by one padding word, both when
// stepping to the next object and when sizing a freelist entry; every
// entry's size, and a coalesced run's total size, is therefore even.
func (w *World) RebuildFreelist(head *freelistHead, regionBase, regionEnd uintptr) error {
	head.head = 0

	var prev uintptr // last entry linked into the list (open or closed)
	var open uintptr  // the entry currently being extended by coalescing, or 0

	closeOpen := func() {
		if open != 0 {
			writeWord(wordAt(open, freelistSlotNext), 0)
			open = 0
		}
	}

	addr := regionBase
	for addr < regionEnd {
		h := w.header(addr)
		size, err := ObjectSize(h, addr)
		if err != nil || size == 0 {
			return &ScanError{Op: "rebuild-freelist", Header: h, Addr: addr}
		}
		if size%2 != 0 {
			size++
		}

		marked := h.ObjectTag() != ObjFreelistEntry && h.PinnedMarked() == w.pinnedMarkBit
		if marked {
			closeOpen()
			addr += uintptr(size) * uintptr(wordSize)
			continue
		}

		if open != 0 {
			// Coalesce into the run currently being extended.
			openHeader := w.header(open)
			w.setHeader(open, NewHeader(ObjFreelistEntry, openHeader.Data()+size, w.pinnedMarkBit))
		} else {
			w.setHeader(addr, NewHeader(ObjFreelistEntry, size, w.pinnedMarkBit))
			if head.head == 0 {
				head.head = addr
			} else {
				writeWord(wordAt(prev, freelistSlotNext), Word(addr))
			}
			prev = addr
			open = addr
		}

		if w.Config.ParanoidAllocation {
			w.poisonFreelistEntry(open)
		}

		addr += uintptr(size) * uintptr(wordSize)
	}

	closeOpen()
	return nil
}

// poisonFreelistEntry overwrites every non-header, non-link word of a
// freelist entry with -1, to trap use-after-free (spec §4.6 step 5,
// "paranoid mode"). Words 0 (header) and 1 (next link) are preserved.
func (w *World) poisonFreelistEntry(addr uintptr) {
	h := w.header(addr)
	size := h.Data()
	for i := uintptr(2); i < uintptr(size); i++ {
		writeWord(wordAt(addr, i), Word(^uintptr(0)))
	}
}
