package gc

import "testing"

// TestProcessFinalizersKeepsLiveEntriesKnown confirms a weak pointer
// that is still live after the fixpoint stays in knownFinalizers and is
// never queued for execution.
func TestProcessFinalizersKeepsLiveEntriesKnown(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	w.setHeader(addr, weakWithLivep(NewHeader(ObjWeakPointer, 0, false), true))
	w.RegisterFinalizer(WithTag(addr, TagObject))

	w.ProcessFinalizers()

	if len(w.PendingFinalizers()) != 0 {
		t.Fatalf("a live weak pointer must not be queued for finalization")
	}
	if len(w.knownFinalizers) != 1 || w.knownFinalizers[0] != addr {
		t.Fatalf("live weak pointer was dropped from knownFinalizers")
	}
}

// TestProcessFinalizersOrdersMostRecentFirst confirms several weak
// pointers that die in the same cycle are queued most-recently-processed
// first, matching PendingFinalizers' documented order.
func TestProcessFinalizersOrdersMostRecentFirst(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	var addrs []uintptr
	for i := 0; i < 3; i++ {
		addr := general.addr(4 + i*8)
		w.setHeader(addr, weakWithLivep(NewHeader(ObjWeakPointer, 0, false), false))
		w.RegisterFinalizer(WithTag(addr, TagObject))
		addrs = append(addrs, addr)
	}

	w.ProcessFinalizers()

	pending := w.PendingFinalizers()
	if len(pending) != 3 {
		t.Fatalf("PendingFinalizers() len = %d, want 3", len(pending))
	}
	for i, addr := range addrs {
		if pending[len(pending)-1-i] != addr {
			t.Fatalf("pending[%d] = %#x, want %#x (most-recent-first order)", len(pending)-1-i, pending[len(pending)-1-i], addr)
		}
	}
}

// TestFinalizerRunsAtMostOnce confirms a second call to
// RunPendingFinalizers with nothing newly queued invokes no finalizer.
func TestFinalizerRunsAtMostOnce(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	w.setHeader(addr, weakWithLivep(NewHeader(ObjWeakPointer, 0, false), false))
	writeWord(wordAt(addr, weakSlotFinalizer), fixnum(1))
	writeWord(wordAt(addr, weakSlotValue), fixnum(2))
	w.RegisterFinalizer(WithTag(addr, TagObject))
	w.ProcessFinalizers()

	w.RunPendingFinalizers()
	sup := w.Supervisor.(*fakeSupervisor)
	if len(sup.finalizerCalls) != 1 {
		t.Fatalf("expected 1 finalizer call, got %d", len(sup.finalizerCalls))
	}

	w.RunPendingFinalizers() // nothing pending now
	if len(sup.finalizerCalls) != 1 {
		t.Fatalf("a second RunPendingFinalizers call re-invoked a finalizer")
	}
	if got := readWord(wordAt(addr, weakSlotFinalizer)); got != 0 {
		t.Fatalf("finalizer slot not cleared after invocation: %#x", got)
	}
}
