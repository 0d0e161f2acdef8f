package vm

import (
	"sync"
	"sync/atomic"

	"tagvm.dev/gcruntime/gc"
)

// Supervisor is the hosted gc.Supervisor: a world-stop built on a
// sync.RWMutex plus a registry of live mutators, generalizing the
// teacher's headTask/next ring (src/runtime/scheduler.go) from a
// single-core cooperative scheduler to real OS goroutines that check in
// at safepoints instead of yielding via PendSV.
//
// A mutator goroutine calls Register once, then Safepoint periodically
// (at allocation sites and loop back-edges, the way the teacher's
// scheduler only switches tasks from runScheduler). WithWorldStopped
// takes the write side of worldLock, which blocks every mutator
// currently parked in Safepoint's read-lock and prevents new ones from
// entering it until fn returns.
type Supervisor struct {
	worldLock sync.RWMutex

	mu      sync.Mutex
	threads []*MutatorThread

	freeBlocks, totalBlocks atomic.Int64

	// Finalize is invoked by InvokeFinalizer; nil drops finalizer calls,
	// which a caller with no Lisp-level call-in mechanism may prefer to
	// logging every one.
	Finalize func(fn, value gc.Word)
}

// NewSupervisor constructs a Supervisor with totalBlocks fixed at
// construction time, as store_statistics names a single backing-store
// sizing decision made at startup (spec §6).
func NewSupervisor(totalBlocks int64) *Supervisor {
	s := &Supervisor{}
	s.totalBlocks.Store(totalBlocks)
	s.freeBlocks.Store(totalBlocks)
	return s
}

// WithWorldStopped implements gc.Supervisor (spec §4.8 step 2): it
// excludes every registered mutator from its safepoint for the
// duration of fn.
func (s *Supervisor) WithWorldStopped(fn func() error) error {
	s.worldLock.Lock()
	defer s.worldLock.Unlock()
	return fn()
}

// Safepoint is where a mutator goroutine may be paused for a
// collection. Callers should invoke it at allocation sites and loop
// back-edges; it returns promptly when no cycle is in progress.
func (s *Supervisor) Safepoint() {
	s.worldLock.RLock()
	s.worldLock.RUnlock()
}

// Register adds a mutator to the thread list reported via Threads, and
// returns a function the mutator must call exactly once, from the same
// goroutine, before it exits.
func (s *Supervisor) Register(t *MutatorThread) (deregister func()) {
	s.mu.Lock()
	s.threads = append(s.threads, t)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, other := range s.threads {
			if other == t {
				s.threads = append(s.threads[:i], s.threads[i+1:]...)
				return
			}
		}
	}
}

// Threads implements gc.Supervisor.
func (s *Supervisor) Threads() []gc.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gc.Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t
	}
	return out
}

// StoreStatistics implements gc.Supervisor over the block counters this
// Supervisor's allocator-facing methods maintain.
func (s *Supervisor) StoreStatistics() (freeBlocks, totalBlocks int64) {
	return s.freeBlocks.Load(), s.totalBlocks.Load()
}

// SetFreeBlocks lets an allocator built on top of this Supervisor report
// backing-store pressure ahead of the next cycle's step 12 (spec §4.8).
func (s *Supervisor) SetFreeBlocks(n int64) {
	s.freeBlocks.Store(n)
}

// InvokeFinalizer implements gc.Supervisor (spec §4.7, §4.8 step 13).
func (s *Supervisor) InvokeFinalizer(fn, value gc.Word) {
	if s.Finalize != nil {
		s.Finalize(fn, value)
	}
}
