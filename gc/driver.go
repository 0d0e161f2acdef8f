package gc

// Roots are the statically-known runtime singletons scavenged before any
// thread's stack (spec §4.8 step 6).
type Roots struct {
	Nil               Word
	UnboundValue      Word
	UnboundTLSSlot    Word
	UndefinedFunction Word
	ClosureTrampoline Word
}

func (r *Roots) each(fn func(*Word) error) error {
	for _, slot := range []*Word{&r.Nil, &r.UnboundValue, &r.UnboundTLSSlot, &r.UndefinedFunction, &r.ClosureTrampoline} {
		if err := fn(slot); err != nil {
			return err
		}
	}
	return nil
}

// Cycle runs one full collection, implementing spec §4.8 end to end. It
// either completes or panics (via fatal) — per spec §7, "either completes
// a full cycle or halts the system." A nested call returns
// *NestedCycleError without collecting.
func (w *World) Cycle(roots *Roots, resolver FunctionResolver, currentThreadWalk func() error) error {
	if !w.tryBeginCycle() {
		return &NestedCycleError{}
	}
	defer w.endCycle()

	return w.Supervisor.WithWorldStopped(func() error {
		// 3. Reset meters; clear weak worklist.
		w.meters.reset()
		w.weakWorklist = nil
		w.deadWeakValues = nil
		w.pendingFinalizerValues = nil

		// 4. Flip.
		w.general.flip()
		w.cons.flip()
		w.pinnedMarkBit = !w.pinnedMarkBit

		// 5. Reprotect newspace, writable + zero-fill-on-demand.
		flags := MemPresent | MemWritable | MemZeroFillOnDemand
		if err := w.Supervisor.ProtectMemoryRange(w.general.newspaceBase(), w.general.halfSize, flags); err != nil {
			fatal(w.Printer, err)
		}
		if err := w.Supervisor.ProtectMemoryRange(w.cons.newspaceBase(), w.cons.halfSize, flags); err != nil {
			fatal(w.Printer, err)
		}

		// 6. Scavenge statically known roots, then the current thread's
		// stack.
		if err := roots.each(func(slot *Word) error {
			updated, err := w.Scavenge(*slot)
			if err != nil {
				return err
			}
			*slot = updated
			return nil
		}); err != nil {
			fatal(w.Printer, err)
		}
		if currentThreadWalk != nil {
			if err := currentThreadWalk(); err != nil {
				fatal(w.Printer, err)
			}
		}

		if threads := w.Supervisor.Threads(); len(threads) > 0 {
			ts := &ThreadScanner{World: w, Resolver: resolver}
			if err := ts.ScanAll(threads); err != nil {
				fatal(w.Printer, err)
			}
		}

		// 7. Drain: alternate general/cons, one object at a time, until
		// both fingers meet their bump pointers.
		if err := w.drain(); err != nil {
			fatal(w.Printer, err)
		}

		// 8. Weak-pointer fixpoint; finalizer splicing.
		if err := w.RunWeakFixpoint(w.drain); err != nil {
			fatal(w.Printer, err)
		}
		w.ProcessFinalizers()

		// 9. Unmap oldspace (both regions) — only now, since weak-key
		// examination above needed to read oldspace headers for
		// gc-forward tags.
		if err := w.Supervisor.ReleaseMemoryRange(w.general.oldspaceBase(), w.general.halfSize); err != nil {
			fatal(w.Printer, err)
		}
		if err := w.Supervisor.ReleaseMemoryRange(w.cons.oldspaceBase(), w.cons.halfSize); err != nil {
			fatal(w.Printer, err)
		}

		// 10. Rebuild pinned and wired freelists.
		if err := w.RebuildFreelist(w.pinnedFreelist, w.Layout.PinnedBase, w.Layout.PinnedBase+w.Layout.PinnedSize); err != nil {
			fatal(w.Printer, err)
		}
		if err := w.RebuildFreelist(w.wiredFreelist, w.Layout.WiredBase, w.Layout.WiredBase+w.Layout.WiredSize); err != nil {
			fatal(w.Printer, err)
		}

		// 11. Trim newspace to a TrimGranularity boundary.
		w.trimRegion(&w.general)
		w.trimRegion(&w.cons)

		// 12. Update memory-expansion-remaining, floor at the
		// configured headroom.
		free, _ := w.Supervisor.StoreStatistics()
		if free < w.Config.MinFreeBlocksHeadroom {
			free = w.Config.MinFreeBlocksHeadroom
		}
		w.meters.memoryExpansionRemaining.Store(free)

		// 13. Bump epoch; finalizers run after the world resumes (by
		// the caller of Cycle, see RunPendingFinalizers), so they don't
		// execute here.
		w.meters.gcEpoch.Add(1)
		return nil
	})
}

func (w *World) tryBeginCycle() bool {
	return w.inProgress.CompareAndSwap(false, true)
}

func (w *World) endCycle() {
	w.inProgress.Store(false)
}

// drain loops until both newspace fingers meet their bump pointers,
// scanning exactly one object per inner step and alternating between the
// general and cons areas each outer pass (spec §4.8 step 7).
func (w *World) drain() error {
	for w.general.finger != w.general.bump || w.cons.finger != w.cons.bump {
		if w.general.finger != w.general.bump {
			if err := w.drainOne(&w.general, TagObject); err != nil {
				return err
			}
		}
		if w.cons.finger != w.cons.bump {
			if err := w.drainOne(&w.cons, TagCons); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *World) drainOne(s *semispace, tag Tag) error {
	addr := s.finger
	word := WithTag(addr, tag)

	if err := w.ScanWord(word); err != nil {
		return err
	}

	var size uint64
	if tag == TagCons {
		size = 2
	} else {
		h := w.header(addr)
		var err error
		size, err = ObjectSize(h, addr)
		if err != nil {
			return err
		}
		if size%2 != 0 {
			size++
		}
	}
	s.finger += uintptr(size) * uintptr(wordSize)
	return nil
}

// trimRegion rounds the bump pointer up to the configured granularity and
// releases the unused tail of both the newspace and oldspace windows
// (spec §4.8 step 11).
func (w *World) trimRegion(s *semispace) {
	granularity := w.Config.TrimGranularity
	if granularity == 0 {
		return
	}
	used := s.bump - s.newspaceBase()
	rounded := ((used + granularity - 1) / granularity) * granularity
	if rounded >= s.halfSize {
		return
	}
	tailSize := s.halfSize - rounded
	_ = w.Supervisor.ReleaseMemoryRange(s.newspaceBase()+rounded, tailSize)
	_ = w.Supervisor.ReleaseMemoryRange(s.oldspaceBase()+rounded, tailSize)
	s.limit = s.newspaceBase() + rounded
}
