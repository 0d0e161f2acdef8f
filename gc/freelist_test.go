package gc

import "testing"

// TestRebuildFreelistCoalesces reproduces spec §8 S6: a pinned extent
// containing, in address order, a live object (4 words), two adjacent
// dead objects (2 words each), and another live object (4 words). The
// rebuilt freelist must contain exactly one entry spanning the two dead
// objects' combined 4 words, linked from the region's head.
func TestRebuildFreelistCoalesces(t *testing.T) {
	arena := newTestArena(256)
	w := NewWorld(Layout{PinnedBase: arena.base, PinnedSize: uintptr(len(arena.bytes))}, DefaultConfig(), &fakeSupervisor{})
	w.pinnedMarkBit = true

	base := arena.addr(0)
	live1 := base
	dead1 := live1 + 4*uintptr(wordSize)
	dead2 := dead1 + 2*uintptr(wordSize)
	live2 := dead2 + 2*uintptr(wordSize)
	end := live2 + 4*uintptr(wordSize)

	w.setHeader(live1, NewHeader(ObjSimpleVector, 3, w.pinnedMarkBit))
	w.setHeader(dead1, NewHeader(ObjSimpleVector, 1, !w.pinnedMarkBit))
	w.setHeader(dead2, NewHeader(ObjSimpleVector, 1, !w.pinnedMarkBit))
	w.setHeader(live2, NewHeader(ObjSimpleVector, 3, w.pinnedMarkBit))

	head := &freelistHead{}
	if err := w.RebuildFreelist(head, base, end); err != nil {
		t.Fatal(err)
	}

	if head.head != dead1 {
		t.Fatalf("freelist head = %#x, want %#x (first dead run)", head.head, dead1)
	}
	entry := w.header(dead1)
	if entry.ObjectTag() != ObjFreelistEntry {
		t.Fatalf("coalesced entry is not a freelist entry: %v", entry.ObjectTag())
	}
	if entry.Data() != 4 {
		t.Fatalf("coalesced entry size = %d, want 4", entry.Data())
	}
	if next := readWord(wordAt(dead1, freelistSlotNext)); next != 0 {
		t.Fatalf("single coalesced entry should terminate the list, got next = %#x", next)
	}

	// The live objects must be untouched.
	if w.header(live1).ObjectTag() == ObjFreelistEntry {
		t.Fatalf("live1 was swept")
	}
	if w.header(live2).ObjectTag() == ObjFreelistEntry {
		t.Fatalf("live2 was swept")
	}
}

func TestRebuildFreelistEmptyRegionIsAllFree(t *testing.T) {
	arena := newTestArena(128)
	w := NewWorld(Layout{PinnedBase: arena.base, PinnedSize: uintptr(len(arena.bytes))}, DefaultConfig(), &fakeSupervisor{})
	w.pinnedMarkBit = true

	base := arena.addr(0)
	end := base + 16*uintptr(wordSize)
	w.setHeader(base, NewHeader(ObjSimpleVector, 15, !w.pinnedMarkBit)) // size = 1+15 = 16 words, the whole region

	head := &freelistHead{}
	if err := w.RebuildFreelist(head, base, end); err != nil {
		t.Fatal(err)
	}
	if head.head != base {
		t.Fatalf("head = %#x, want %#x", head.head, base)
	}
	if got := w.header(base).Data(); got != 16 {
		t.Fatalf("entry size = %d, want 16", got)
	}
}

func TestRebuildFreelistTwoDisjointRuns(t *testing.T) {
	arena := newTestArena(256)
	w := NewWorld(Layout{PinnedBase: arena.base, PinnedSize: uintptr(len(arena.bytes))}, DefaultConfig(), &fakeSupervisor{})
	w.pinnedMarkBit = true

	base := arena.addr(0)
	dead1 := base
	live := dead1 + 2*uintptr(wordSize)
	dead2 := live + 2*uintptr(wordSize)
	end := dead2 + 2*uintptr(wordSize)

	w.setHeader(dead1, NewHeader(ObjSimpleVector, 1, !w.pinnedMarkBit))
	w.setHeader(live, NewHeader(ObjSimpleVector, 1, w.pinnedMarkBit))
	w.setHeader(dead2, NewHeader(ObjSimpleVector, 1, !w.pinnedMarkBit))

	head := &freelistHead{}
	if err := w.RebuildFreelist(head, base, end); err != nil {
		t.Fatal(err)
	}
	if head.head != dead1 {
		t.Fatalf("head = %#x, want %#x", head.head, dead1)
	}
	next := readWord(wordAt(dead1, freelistSlotNext))
	if PointerField(next) != dead2 {
		t.Fatalf("dead1's next = %#x, want %#x", PointerField(next), dead2)
	}
	if readWord(wordAt(dead2, freelistSlotNext)) != 0 {
		t.Fatalf("dead2 should terminate the list")
	}
}

func TestPoisonFreelistEntry(t *testing.T) {
	arena := newTestArena(128)
	cfg := DefaultConfig()
	cfg.ParanoidAllocation = true
	w := NewWorld(Layout{PinnedBase: arena.base, PinnedSize: uintptr(len(arena.bytes))}, cfg, &fakeSupervisor{})
	w.pinnedMarkBit = true

	base := arena.addr(0)
	end := base + 3*uintptr(wordSize) // exactly ObjectSize(header): 1 + 2 = 3 words
	w.setHeader(base, NewHeader(ObjSimpleVector, 2, !w.pinnedMarkBit))
	writeWord(wordAt(base, 2), fixnum(99)) // stale payload, must be poisoned

	head := &freelistHead{}
	if err := w.RebuildFreelist(head, base, end); err != nil {
		t.Fatal(err)
	}
	if got := readWord(wordAt(base, 2)); uintptr(got) != ^uintptr(0) {
		t.Fatalf("payload word not poisoned: %#x", got)
	}
}
