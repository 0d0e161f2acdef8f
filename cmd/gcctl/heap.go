package main

import (
	"unsafe"

	"tagvm.dev/gcruntime/gc"
	"tagvm.dev/gcruntime/vm"
)

// syntheticHeap is a tiny cons-and-vector object graph built directly
// in a freshly mmap'd general/cons window, standing in for a live
// image's heap when gcctl has no process to attach to — the way a
// vendor's board-support smoke test exercises a driver against
// loopback hardware rather than the real peripheral.
type syntheticHeap struct {
	world *gc.World
	root  gc.Word
}

func buildSyntheticHeap() (*syntheticHeap, error) {
	const halfSize = 1 << 16 // one semispace half, each of general and cons

	generalBase, err := vm.ReserveRegion(2 * halfSize)
	if err != nil {
		return nil, err
	}
	consBase, err := vm.ReserveRegion(2 * halfSize)
	if err != nil {
		return nil, err
	}

	sup := vm.NewSupervisor(1024)
	if err := sup.ProtectMemoryRange(generalBase, 2*halfSize, gc.MemPresent|gc.MemWritable); err != nil {
		return nil, err
	}
	if err := sup.ProtectMemoryRange(consBase, 2*halfSize, gc.MemPresent|gc.MemWritable); err != nil {
		return nil, err
	}

	layout := gc.Layout{
		GeneralBase: generalBase, GeneralSize: 2 * halfSize,
		ConsBase: consBase, ConsSize: 2 * halfSize,
	}
	w := gc.NewWorld(layout, gc.DefaultConfig(), sup)

	// Oldspace is whichever half Cycle's flip will leave as oldspace;
	// before the first flip newspaceHigh is false (oldspace is the
	// upper half), so the pre-cycle graph is built in the lower half.
	vecAddr := generalBase + 128
	writeWord(vecAddr, gc.Word(gc.NewHeader(gc.ObjSimpleVector, 2, false)))
	writeWord(vecAddr+8, fixnum(1))
	writeWord(vecAddr+16, fixnum(2))

	consAddr := consBase + 128
	writeWord(consAddr, gc.WithTag(vecAddr, gc.TagObject))
	writeWord(consAddr+8, fixnum(0))

	return &syntheticHeap{world: w, root: gc.WithTag(consAddr, gc.TagCons)}, nil
}

// runCycle scavenges the heap's root from the currentThreadWalk hook,
// the same stand-in driver_test.go uses in place of a real stack scan,
// and returns the root's relocated word.
func (h *syntheticHeap) runCycle() (gc.Word, error) {
	var newRoot gc.Word
	walk := func() error {
		var err error
		newRoot, err = h.world.Scavenge(h.root)
		return err
	}
	if err := h.world.Cycle(&gc.Roots{}, nil, walk); err != nil {
		return 0, err
	}
	h.root = newRoot
	return newRoot, nil
}

func writeWord(addr uintptr, v gc.Word) {
	*(*gc.Word)(unsafe.Pointer(addr)) = v
}

// fixnum builds an even fixnum word. The primary tag occupies the low 3
// bits of every Word (gc.TagField/gc.WithTag), so an even fixnum's
// payload is shifted left by the same 3 bits gc.WithTag leaves alone
// when it ORs in gc.TagFixnumEven (0).
func fixnum(n int64) gc.Word {
	return gc.WithTag(uintptr(n)<<3, gc.TagFixnumEven)
}
