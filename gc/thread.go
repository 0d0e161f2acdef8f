package gc

// threadWords is a Lisp thread object's fixed total size, header included
// (spec §3, "thread (512)").
const threadWords = 512

// Admin slot indices within a thread heap object (spec §4.5, "Always
// scavenge identity/admin slots").
const (
	threadSlotName                = 1
	threadSlotState                = 2
	threadSlotLock                  = 3
	threadSlotStackObject           = 4
	threadSlotSpecialStackPointer   = 5
	threadSlotWaitItem              = 6
	threadSlotNext                  = 7
	threadSlotPrev                  = 8
	threadSlotPendingFootholds       = 9
	threadSlotMutexStack             = 10
)

// ScanThread scavenges a thread's generically-reachable admin slots. It is
// what scan.go's dispatch for ObjThread delegates to when a thread object
// is reached as an ordinary slot value elsewhere in the heap graph. It
// does not touch registers, TLS, or the native stack: those are not
// reachable by slot-walking and are visited directly by ThreadScanner for
// every thread the supervisor reports live, independent of heap
// reachability (spec §4.5).
func (w *World) ScanThread(addr uintptr) error {
	for _, slot := range []uintptr{
		threadSlotName, threadSlotState, threadSlotLock, threadSlotStackObject,
		threadSlotSpecialStackPointer, threadSlotWaitItem, threadSlotNext,
		threadSlotPrev, threadSlotPendingFootholds, threadSlotMutexStack,
	} {
		if err := w.ScavengeSlot(addr, slot); err != nil {
			return err
		}
	}
	return nil
}

// ThreadRunState is a native thread's coarse execution state (spec §4.5).
type ThreadRunState uint8

const (
	ThreadRunnable ThreadRunState = iota
	ThreadDead
	ThreadPartiallyInitialized
)

// Thread is the native descriptor the supervisor exposes for a live
// thread (spec §6, "Thread accessors"). Addr is the address of this
// thread's Lisp-level heap object (an ObjThread of size threadWords),
// whose admin slots ScanAll scavenges by passing Addr to ScanThread.
type Thread interface {
	Addr() uintptr
	State() ThreadRunState
	IsCurrent() bool
	System() bool // a named system thread whose stack provably references only wired objects
	FullSaveP() bool

	SP() uintptr
	FP() uintptr
	IP() uintptr

	RAX() uintptr
	RCX() uintptr
	RDX() uintptr
	RBX() uintptr
	R8() uintptr
	R9() uintptr
	R10() uintptr
	R11() uintptr
	R12() uintptr
	R13() uintptr

	SetRAX(uintptr)
	SetRCX(uintptr)
	SetRDX(uintptr)
	SetRBX(uintptr)
	SetR8(uintptr)
	SetR9(uintptr)
	SetR10(uintptr)
	SetR11(uintptr)
	SetR12(uintptr)
	SetR13(uintptr)

	// TLSRange and MVRange report the bounds, in slot units relative to
	// the thread object, of the thread-local-storage and multiple-values
	// areas embedded in the thread object.
	TLSRange() (startSlot, count uintptr)
	MVRange() (startSlot, count uintptr)
}

// ThreadScanner implements spec §4.5's per-thread dispatch.
type ThreadScanner struct {
	World    *World
	Resolver FunctionResolver
}

// ScanAll scans every thread's admin slots and, where applicable, its
// register file and stack (spec §4.5).
func (ts *ThreadScanner) ScanAll(threads []Thread) error {
	for _, t := range threads {
		if err := ts.scanOne(t); err != nil {
			return err
		}
	}
	return nil
}

func (ts *ThreadScanner) scanOne(t Thread) error {
	w := ts.World
	if err := w.ScanThread(t.Addr()); err != nil {
		return err
	}

	if t.State() == ThreadDead {
		return nil
	}

	if t.State() == ThreadPartiallyInitialized {
		// Spec §4.5: a partially-initialized thread has a live register
		// file and TLS slot range, but no stack worth walking yet.
		if err := ts.scavengeRegisters(t); err != nil {
			return err
		}
		startSlot, count := t.TLSRange()
		return w.scanSlotRangeAbs(wordAt(t.Addr(), startSlot), count)
	}

	startSlot, count := t.TLSRange()
	if err := w.scanSlotRangeAbs(wordAt(t.Addr(), startSlot), count); err != nil {
		return err
	}

	if t.IsCurrent() || t.System() {
		// This thread's stack was (or is guaranteed to be) already
		// accounted for — the current thread's stack is scanned
		// inline by the root scavenge step, and named system threads
		// provably reach only wired objects transitively.
		return nil
	}

	if t.FullSaveP() {
		return ts.scanFullSave(t)
	}
	return (&StackWalker{World: w, Resolver: ts.Resolver}).Walk(t.SP(), t.FP(), t.IP())
}

// scavengeRegisters scavenges the data registers unconditionally (r8-r13,
// rbx) via the Thread interface's paired accessor/setter, mirroring
// ScavengeSlot's read-modify-write-if-changed discipline for memory slots.
// Unlike scavengeExtraRegisters, this set is fixed — there is no variant
// register group to select, so it takes no ExtraRegisters argument.
func (ts *ThreadScanner) scavengeRegisters(t Thread) error {
	regs := []struct {
		get func() uintptr
		set func(uintptr)
	}{
		{t.R8, t.SetR8}, {t.R9, t.SetR9}, {t.R10, t.SetR10},
		{t.R11, t.SetR11}, {t.R12, t.SetR12}, {t.R13, t.SetR13},
		{t.RBX, t.SetRBX},
	}
	for _, r := range regs {
		old := r.get()
		updated, err := ts.World.Scavenge(Word(old))
		if err != nil {
			return err
		}
		if uintptr(updated) != old {
			r.set(uintptr(updated))
		}
	}
	return nil
}
