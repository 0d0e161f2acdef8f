package gc

// FixnumValue reads a tagged fixnum word's integer value.
func FixnumValue(w Word) int64 {
	return int64(uintptr(w)) >> tagBits
}

// StackWalker walks a thread's control stack, identifying live slots from
// per-PC GC metadata (spec §4.4).
type StackWalker struct {
	World    *World
	Resolver FunctionResolver
}

// Walk traces the stack identified by (sp, fp, returnPC), scavenging every
// root it finds along the way. It terminates on a zero return address or
// a zero frame pointer (spec §4.4 step 9).
func (sw *StackWalker) Walk(sp, fp, returnPC uintptr) error {
	w := sw.World

	for returnPC != 0 {
		fn, pcOffset, ok := sw.Resolver.ResolveFunction(returnPC)
		if !ok {
			return &StackMetadataError{PC: returnPC, SP: sp, FP: fp, Field: "function", Value: "unresolved"}
		}

		meta, ok := fn.Metadata().Lookup(pcOffset)
		if !ok {
			return &StackMetadataError{PC: returnPC, SP: sp, FP: fp, Field: "metadata", Value: "missing"}
		}

		if err := validateMidCallMetadata(meta, sp, fp, returnPC); err != nil {
			return err
		}

		// Scavenge the function pointer itself.
		fnWord := fn.Word()
		updated, err := w.Scavenge(fnWord)
		if err != nil {
			return err
		}
		_ = updated // the function object never moves a stack frame; this
		// call exists for the side effect of marking/transporting it.

		if err := sw.scanLayoutBitmap(meta, sp, fp); err != nil {
			return err
		}

		if meta.PushedValues > 0 {
			base := sp + uintptr(meta.LayoutLength)*uintptr(wordSize)
			if meta.FrameP {
				base = sp
			}
			if err := w.scanSlotRangeAbs(base, uintptr(meta.PushedValues)); err != nil {
				return err
			}
		}

		if meta.IncomingArguments.Kind == IncomingArgsSlot {
			nArgs := FixnumValue(readWord(wordAt(sp, uintptr(meta.IncomingArguments.SlotIndex))))
			if err := sw.scanOutgoingArgsStrip(fp, nArgs); err != nil {
				return err
			}
		}

		// Advance to the caller: (sp, fp, pc) <- (fp+16, *fp, *(fp+8)).
		if !meta.FrameP {
			return &StackMetadataError{PC: returnPC, SP: sp, FP: fp, Field: "framep", Value: "false in mid-call frame"}
		}
		newSP := fp + 2*uintptr(wordSize)
		newPC := uintptr(readWord(fp + uintptr(wordSize)))
		newFP := uintptr(readWord(fp))

		sp, fp, returnPC = newSP, newFP, newPC
		if fp == 0 {
			return nil
		}
	}
	return nil
}

// validateMidCallMetadata enforces spec §4.4 step 3: fields that are only
// legal in full-save frames must not appear in an ordinary mid-call frame.
func validateMidCallMetadata(m FrameMetadata, sp, fp, pc uintptr) error {
	if m.Interruptp {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "interruptp", Value: "true in mid-call frame"}
	}
	if m.PushedValuesRegister {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "pushed_values_register", Value: "true in mid-call frame"}
	}
	if m.MultipleValues != 0 {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "multiple_values", Value: "nonzero in mid-call frame"}
	}
	if m.BlockOrTagbodyThunk {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "block_or_tagbody_thunk", Value: "true in mid-call frame"}
	}
	if m.IncomingArguments.Kind == IncomingArgsRCX {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "incoming_arguments", Value: ":rcx in mid-call frame"}
	}
	if m.ExtraRegisters != ExtraRegistersNone {
		return &StackMetadataError{PC: pc, SP: sp, FP: fp, Field: "extra_registers", Value: "set in mid-call frame"}
	}
	return nil
}

// scanLayoutBitmap scans the slots named by the layout bitmap, handling
// dynamic-extent roots per spec §4.4 steps 5-6.
func (sw *StackWalker) scanLayoutBitmap(m FrameMetadata, sp, fp uintptr) error {
	w := sw.World
	for i := 0; i < m.LayoutLength; i++ {
		if !bitSet(m.LayoutAddr, i) {
			continue
		}

		var slotAddr uintptr
		if m.FrameP {
			slotAddr = fp - uintptr(i+1)*uintptr(wordSize)
		} else {
			slotAddr = sp + uintptr(i)*uintptr(wordSize)
		}

		val := readWord(slotAddr)
		if TagField(val) == TagDXRootObject {
			payloadAddr := PointerField(val)
			if payloadAddr < sp {
				// Guards against a DX slot left dangling by an
				// in-progress nonlocal exit (spec §9 "Partial NLX").
				continue
			}
			if err := w.ScanWord(WithTag(payloadAddr, TagObject)); err != nil {
				return err
			}
			continue // never scavenge/overwrite the dx-root slot itself
		}

		updated, err := w.Scavenge(val)
		if err != nil {
			return err
		}
		if updated != val {
			writeWord(slotAddr, updated)
		}
	}
	return nil
}

// scanOutgoingArgsStrip scavenges the caller's outgoing-argument slots
// above the return address once the callee's declared argument count is
// known to exceed the five it would otherwise pass in registers
// (spec §4.4 step 8).
func (sw *StackWalker) scanOutgoingArgsStrip(callerFP uintptr, nArgs int64) error {
	count := nArgs - 5
	if count <= 0 {
		return nil
	}
	base := callerFP + 2*uintptr(wordSize)
	return sw.World.scanSlotRangeAbs(base, uintptr(count))
}

// scanSlotRangeAbs scavenges count consecutive words starting at the
// absolute address base.
func (w *World) scanSlotRangeAbs(base uintptr, count uintptr) error {
	for i := uintptr(0); i < count; i++ {
		slot := base + i*uintptr(wordSize)
		old := readWord(slot)
		updated, err := w.Scavenge(old)
		if err != nil {
			return err
		}
		if updated != old {
			writeWord(slot, updated)
		}
	}
	return nil
}

// bitSet reports whether bit i of the bitmap stored at addr is set.
func bitSet(addr uintptr, i int) bool {
	word := readWord(addr + uintptr(i/64)*uintptr(wordSize))
	return uintptr(word)&(1<<(uint(i)%64)) != 0
}
