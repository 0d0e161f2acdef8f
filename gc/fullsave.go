package gc

// scanFullSave implements spec §4.5a: the enriched per-PC metadata forms
// that only appear at interrupt-precise points, where the entire register
// file was saved and is available as roots. After handling this one
// frame, if it has a frame pointer, it continues walking into the caller
// via the ordinary mid-call StackWalker from (fp+16, *fp, *(fp+8)). A
// frame without a frame pointer ends the walk: no caller frame is
// scanned.
func (ts *ThreadScanner) scanFullSave(t Thread) error {
	w := ts.World
	sw := &StackWalker{World: w, Resolver: ts.Resolver}

	fn, pcOffset, ok := ts.Resolver.ResolveFunction(t.IP())
	if !ok {
		return &StackMetadataError{PC: t.IP(), SP: t.SP(), FP: t.FP(), Field: "function", Value: "unresolved"}
	}
	meta, ok := fn.Metadata().Lookup(pcOffset)
	if !ok {
		return &StackMetadataError{PC: t.IP(), SP: t.SP(), FP: t.FP(), Field: "metadata", Value: "missing"}
	}

	if err := ts.scavengeRegisters(t); err != nil {
		return err
	}
	if err := ts.scavengeExtraRegisters(t, meta.ExtraRegisters); err != nil {
		return err
	}

	sp, fp := t.SP(), t.FP()
	if meta.BlockOrTagbodyThunk {
		// The live sp/fp are buried inside an NLX info block pointed to
		// by rax; replace them from that block's words 2 and 3.
		nlxBlock := t.RAX()
		sp = uintptr(readWord(wordAt(nlxBlock, 2)))
		fp = uintptr(readWord(wordAt(nlxBlock, 3)))
	}

	if _, err := w.Scavenge(fn.Word()); err != nil {
		return err
	}
	if err := sw.scanLayoutBitmap(meta, sp, fp); err != nil {
		return err
	}

	pushed := meta.PushedValues
	if meta.PushedValuesRegister {
		pushed += int(t.RCX())
	}
	if pushed > 0 {
		base := sp
		if meta.FrameP {
			base = sp
		} else {
			base = sp + uintptr(meta.LayoutLength)*uintptr(wordSize)
		}
		if err := w.scanSlotRangeAbs(base, uintptr(pushed)); err != nil {
			return err
		}
	}

	if meta.MultipleValues != 0 {
		startSlot, count := t.MVRange()
		if err := w.scanSlotRangeAbs(wordAt(t.Addr(), startSlot), count); err != nil {
			return err
		}
	}

	if meta.IncomingArguments.Kind == IncomingArgsRCX {
		nArgs := int64(t.RCX())
		if err := sw.scanOutgoingArgsStrip(fp, nArgs); err != nil {
			return err
		}
	}

	if !meta.FrameP {
		return nil
	}
	newSP := fp + 2*uintptr(wordSize)
	newPC := uintptr(readWord(fp + uintptr(wordSize)))
	newFP := uintptr(readWord(fp))
	if newFP == 0 {
		return nil
	}
	return sw.Walk(newSP, newFP, newPC)
}

func (ts *ThreadScanner) scavengeExtraRegisters(t Thread, which ExtraRegisters) error {
	scavengeOne := func(get func() uintptr, set func(uintptr)) error {
		old := get()
		updated, err := ts.World.Scavenge(Word(old))
		if err != nil {
			return err
		}
		if uintptr(updated) != old {
			set(uintptr(updated))
		}
		return nil
	}

	switch which {
	case ExtraRegistersRAX:
		return scavengeOne(t.RAX, t.SetRAX)
	case ExtraRegistersRAXRCX:
		if err := scavengeOne(t.RAX, t.SetRAX); err != nil {
			return err
		}
		return scavengeOne(t.RCX, t.SetRCX)
	case ExtraRegistersRAXRCXRDX:
		if err := scavengeOne(t.RAX, t.SetRAX); err != nil {
			return err
		}
		if err := scavengeOne(t.RCX, t.SetRCX); err != nil {
			return err
		}
		return scavengeOne(t.RDX, t.SetRDX)
	default:
		return nil
	}
}
