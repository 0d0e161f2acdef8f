package gc

import "unsafe"

// testArena backs a fake heap for tests: a plain Go byte slice whose base
// address is used as a real address the collector's unsafe-pointer
// arithmetic can dereference. The slice is kept alive by the caller's
// reference to it for the duration of the test.
type testArena struct {
	bytes []byte
	base  uintptr
}

func newTestArena(size int) *testArena {
	b := make([]byte, size)
	return &testArena{bytes: b, base: uintptr(unsafe.Pointer(&b[0]))}
}

func (a *testArena) addr(offsetWords int) uintptr {
	return a.base + uintptr(offsetWords)*uintptr(wordSize)
}

func (a *testArena) writeWord(offsetWords int, w Word) {
	writeWord(a.addr(offsetWords), w)
}

func (a *testArena) readWord(offsetWords int) Word {
	return readWord(a.addr(offsetWords))
}

// fakeSupervisor is a minimal Supervisor for tests: memory protect/release
// are no-ops (the arena is already Go-allocated, committed memory), the
// world is never actually concurrent, and there are no native threads
// beyond what a test registers explicitly.
type fakeSupervisor struct {
	threads          []Thread
	finalizerCalls   []finalizerCall
	freeBlocks       int64
	totalBlocks      int64
}

type finalizerCall struct {
	fn, value Word
}

func (s *fakeSupervisor) WithWorldStopped(fn func() error) error { return fn() }
func (s *fakeSupervisor) ProtectMemoryRange(uintptr, uintptr, MemoryFlags) error { return nil }
func (s *fakeSupervisor) ReleaseMemoryRange(uintptr, uintptr) error             { return nil }
func (s *fakeSupervisor) StoreStatistics() (int64, int64)                       { return s.freeBlocks, s.totalBlocks }
func (s *fakeSupervisor) Threads() []Thread                                     { return s.threads }
func (s *fakeSupervisor) InvokeFinalizer(fn, value Word) {
	s.finalizerCalls = append(s.finalizerCalls, finalizerCall{fn, value})
}

// testLayout builds a Layout whose general/cons copying windows live
// inside the given arenas, generous enough that tests never need to
// exercise trimming/exhaustion.
func testLayout(general, cons *testArena) Layout {
	return Layout{
		GeneralBase: general.base, GeneralSize: uintptr(len(general.bytes)),
		ConsBase: cons.base, ConsSize: uintptr(len(cons.bytes)),
		// Pinned/wired/stack regions are exercised by dedicated tests
		// that build their own arenas; leave them empty here so
		// AddressTag's default case (stack) never collides with the
		// general/cons windows above.
	}
}
