package gc

// TransportError reports an invariant violation discovered while copying
// an object from oldspace to newspace (spec §4.2).
type TransportError struct {
	Word Word
	Err  error
}

func (e *TransportError) Error() string {
	return "gc: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// regionFor returns the semispace backing w's primary tag.
func (w *World) regionFor(tag Tag) *semispace {
	if tag == TagCons {
		return &w.cons
	}
	return &w.general
}

// Transport copies a live object from oldspace to newspace, installing a
// forwarding pointer in the object's old location, and returns the new
// tagged pointer (spec §4.2). Transport is idempotent: calling it again on
// a word whose oldspace header is already a forwarding pointer returns the
// previously-installed forwarded address without allocating.
//
// Preconditions: TagField(word) is TagCons or TagObject, and
// PointerField(word) names an address in this region's oldspace.
func (w *World) Transport(word Word) (Word, error) {
	tag := TagField(word)
	addr := PointerField(word)
	region := w.regionFor(tag)

	first := readWord(addr)
	if TagField(first) == TagGCForward {
		// Already relocated this cycle; the original primary tag is
		// reapplied to the stored forwarded address (step 1).
		return WithTag(PointerField(first), tag), nil
	}

	var size uint64
	if tag == TagCons {
		size = 2
	} else {
		h := Header(uint64(first))
		var err error
		size, err = ObjectSize(h, addr)
		if err != nil {
			return 0, &TransportError{Word: word, Err: err}
		}
	}

	padded := size
	if tag != TagCons && padded%2 != 0 {
		padded++
	}

	newAddr := region.bump
	region.bump += uintptr(padded) * uintptr(wordSize)

	memcpyWords(newAddr, addr, uintptr(size))
	if padded != size {
		zeroWords(newAddr+uintptr(size)*uintptr(wordSize), uintptr(padded-size))
	}

	// Overwrite the oldspace first word with a forwarding pointer.
	writeWord(addr, WithTag(newAddr, TagGCForward))

	w.meters.objectsCopied.Add(1)
	w.meters.wordsCopied.Add(int64(size))

	return WithTag(newAddr, tag), nil
}
