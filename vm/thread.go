package vm

import (
	"sync"

	"tagvm.dev/gcruntime/gc"
)

// MutatorThread is the hosted gc.Thread: every field a cooperating
// interpreter writes before calling Supervisor.Safepoint, generalizing
// the teacher's task struct (stackTop/ctx/stack in
// src/runtime/scheduler.go) from a bare-metal stack-switch record to
// the richer register/metadata snapshot the stack walker needs.
//
// Every accessor except Addr (fixed at construction) takes mu, since
// the owning goroutine updates these
// fields concurrently with a collector cycle reading them from inside
// WithWorldStopped — the RWMutex in Supervisor only excludes mutators
// from reaching a fresh Safepoint call, it does not freeze one already
// past it while a cycle runs, so MutatorThread's own lock is what
// actually makes the snapshot consistent.
type MutatorThread struct {
	mu sync.Mutex

	addr              uintptr
	state             gc.ThreadRunState
	current, system   bool
	fullSave          bool
	sp, fp, ip        uintptr
	rax, rcx, rdx, rbx uintptr
	r8, r9, r10, r11, r12, r13 uintptr
	tlsStart, tlsCount uintptr
	mvStart, mvCount   uintptr
}

// NewMutatorThread constructs a thread whose Lisp-level heap object
// (the thread's admin slots ScanThread walks) lives at addr.
func NewMutatorThread(addr uintptr) *MutatorThread {
	return &MutatorThread{addr: addr, state: gc.ThreadPartiallyInitialized}
}

// SetCurrent marks this thread as the one the collector is running on,
// so ThreadScanner skips its stack (spec §4.5 — already accounted for
// by the root scavenge step).
func (t *MutatorThread) SetCurrent(v bool) { t.mu.Lock(); t.current = v; t.mu.Unlock() }

// SetSystem marks this as a named system thread that provably reaches
// only wired objects (spec §4.5).
func (t *MutatorThread) SetSystem(v bool) { t.mu.Lock(); t.system = v; t.mu.Unlock() }

// SetFullSave toggles whether this thread was stopped at an arbitrary
// interrupt point rather than a call site (spec §4.5a).
func (t *MutatorThread) SetFullSave(v bool) { t.mu.Lock(); t.fullSave = v; t.mu.Unlock() }

// SetRunning transitions the thread out of
// ThreadPartiallyInitialized/ThreadDead, and SetStopped captures the
// (sp, fp, ip) triple a mutator must publish before calling
// Supervisor.Safepoint.
func (t *MutatorThread) SetRunning() { t.mu.Lock(); t.state = gc.ThreadRunnable; t.mu.Unlock() }
func (t *MutatorThread) SetDead()    { t.mu.Lock(); t.state = gc.ThreadDead; t.mu.Unlock() }

func (t *MutatorThread) SetStopped(sp, fp, ip uintptr) {
	t.mu.Lock()
	t.sp, t.fp, t.ip = sp, fp, ip
	t.mu.Unlock()
}

// SetTLSRange and SetMVRange configure the slot windows TLSRange and
// MVRange report, in slot units relative to addr (spec §4.5, §4.5a).
func (t *MutatorThread) SetTLSRange(startSlot, count uintptr) {
	t.mu.Lock()
	t.tlsStart, t.tlsCount = startSlot, count
	t.mu.Unlock()
}

func (t *MutatorThread) SetMVRange(startSlot, count uintptr) {
	t.mu.Lock()
	t.mvStart, t.mvCount = startSlot, count
	t.mu.Unlock()
}

func (t *MutatorThread) Addr() uintptr            { return t.addr }
func (t *MutatorThread) State() gc.ThreadRunState { t.mu.Lock(); defer t.mu.Unlock(); return t.state }
func (t *MutatorThread) IsCurrent() bool          { t.mu.Lock(); defer t.mu.Unlock(); return t.current }
func (t *MutatorThread) System() bool             { t.mu.Lock(); defer t.mu.Unlock(); return t.system }
func (t *MutatorThread) FullSaveP() bool          { t.mu.Lock(); defer t.mu.Unlock(); return t.fullSave }

func (t *MutatorThread) SP() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.sp }
func (t *MutatorThread) FP() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.fp }
func (t *MutatorThread) IP() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.ip }

func (t *MutatorThread) RAX() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.rax }
func (t *MutatorThread) RCX() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.rcx }
func (t *MutatorThread) RDX() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.rdx }
func (t *MutatorThread) RBX() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.rbx }
func (t *MutatorThread) R8() uintptr  { t.mu.Lock(); defer t.mu.Unlock(); return t.r8 }
func (t *MutatorThread) R9() uintptr  { t.mu.Lock(); defer t.mu.Unlock(); return t.r9 }
func (t *MutatorThread) R10() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.r10 }
func (t *MutatorThread) R11() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.r11 }
func (t *MutatorThread) R12() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.r12 }
func (t *MutatorThread) R13() uintptr { t.mu.Lock(); defer t.mu.Unlock(); return t.r13 }

func (t *MutatorThread) SetRAX(v uintptr) { t.mu.Lock(); t.rax = v; t.mu.Unlock() }
func (t *MutatorThread) SetRCX(v uintptr) { t.mu.Lock(); t.rcx = v; t.mu.Unlock() }
func (t *MutatorThread) SetRDX(v uintptr) { t.mu.Lock(); t.rdx = v; t.mu.Unlock() }
func (t *MutatorThread) SetRBX(v uintptr) { t.mu.Lock(); t.rbx = v; t.mu.Unlock() }
func (t *MutatorThread) SetR8(v uintptr)  { t.mu.Lock(); t.r8 = v; t.mu.Unlock() }
func (t *MutatorThread) SetR9(v uintptr)  { t.mu.Lock(); t.r9 = v; t.mu.Unlock() }
func (t *MutatorThread) SetR10(v uintptr) { t.mu.Lock(); t.r10 = v; t.mu.Unlock() }
func (t *MutatorThread) SetR11(v uintptr) { t.mu.Lock(); t.r11 = v; t.mu.Unlock() }
func (t *MutatorThread) SetR12(v uintptr) { t.mu.Lock(); t.r12 = v; t.mu.Unlock() }
func (t *MutatorThread) SetR13(v uintptr) { t.mu.Lock(); t.r13 = v; t.mu.Unlock() }

func (t *MutatorThread) TLSRange() (uintptr, uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tlsStart, t.tlsCount
}

func (t *MutatorThread) MVRange() (uintptr, uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mvStart, t.mvCount
}
