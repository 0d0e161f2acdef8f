package gc

import "testing"

type fakeFunction struct {
	word Word
	meta FunctionMetadata
}

func (f *fakeFunction) Word() Word                 { return f.word }
func (f *fakeFunction) Metadata() FunctionMetadata { return f.meta }

// fakeResolver always resolves to the same function and a fixed pcOffset,
// which is all a single-frame Walk test needs.
type fakeResolver struct {
	fn       Function
	pcOffset uintptr
}

func (r *fakeResolver) ResolveFunction(uintptr) (Function, uintptr, bool) {
	return r.fn, r.pcOffset, true
}

// terminatingFrame writes a frame-pointer chain at fp that makes Walk stop
// after exactly one frame: the saved fp (the word at fp itself) is 0.
func terminatingFrame(stack *testArena, fpWords int) uintptr {
	fp := stack.addr(fpWords)
	writeWord(fp, 0)                     // saved fp = 0: Walk stops here
	writeWord(wordAt(fp, 1), 0)           // saved pc: irrelevant once fp==0
	return fp
}

func TestStackWalkRelocatesLayoutBitmapSlot(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	stack := newTestArena(512)

	target := general.addr(300)
	w.setHeader(target, NewHeader(ObjString, 1, false))

	fp := terminatingFrame(stack, 32)
	slotAddr := fp - 1*uintptr(wordSize) // i=0, FrameP: fp - (i+1)*word
	writeWord(slotAddr, WithTag(target, TagObject))

	layoutAddr := stack.addr(40)
	writeWord(layoutAddr, 1) // bit 0 set

	fn := &fakeFunction{word: fixnum(0), meta: FunctionMetadata{{
		PCOffset: 0, FrameP: true, LayoutAddr: layoutAddr, LayoutLength: 1,
	}}}
	resolver := &fakeResolver{fn: fn, pcOffset: 0}
	sw := &StackWalker{World: w, Resolver: resolver}

	if err := sw.Walk(stack.addr(16), fp, 0x1000); err != nil {
		t.Fatal(err)
	}
	relocated := readWord(slotAddr)
	if !w.general.inNewspace(PointerField(relocated)) {
		t.Fatalf("layout-bitmap slot was not relocated")
	}
}

func TestStackWalkDXRootScansPayloadWithoutOverwritingSlot(t *testing.T) {
	w, _, _ := newScenarioWorld(t)
	stack := newTestArena(512)

	fp := terminatingFrame(stack, 32)
	sp := stack.addr(16)
	// The dx payload lives on the stack itself, above sp, as any real
	// dynamic-extent object would.
	target := stack.addr(60)
	w.setHeader(target, NewHeader(ObjString, 1, false))

	slotAddr := fp - 1*uintptr(wordSize)
	dxWord := WithTag(target, TagDXRootObject)
	writeWord(slotAddr, dxWord)

	layoutAddr := stack.addr(40)
	writeWord(layoutAddr, 1)

	fn := &fakeFunction{word: fixnum(0), meta: FunctionMetadata{{
		PCOffset: 0, FrameP: true, LayoutAddr: layoutAddr, LayoutLength: 1,
	}}}
	sw := &StackWalker{World: w, Resolver: &fakeResolver{fn: fn, pcOffset: 0}}

	if err := sw.Walk(sp, fp, 0x1000); err != nil {
		t.Fatal(err)
	}
	// The target must have been scanned (and, since it's a leaf string,
	// that's a no-op) but the slot itself is never overwritten.
	if got := readWord(slotAddr); got != dxWord {
		t.Fatalf("dx-root slot was overwritten: %#x != %#x", got, dxWord)
	}
}

func TestStackWalkDXRootDanglingBelowSPIsSkipped(t *testing.T) {
	w, _, _ := newScenarioWorld(t)
	stack := newTestArena(512)

	fp := terminatingFrame(stack, 32)
	sp := stack.addr(48) // above the dx payload address, so it reads as dangling
	target := stack.addr(20)
	w.setHeader(target, NewHeader(ObjString, 1, false))

	slotAddr := fp - 1*uintptr(wordSize)
	dxWord := WithTag(target, TagDXRootObject)
	writeWord(slotAddr, dxWord)

	layoutAddr := stack.addr(40)
	writeWord(layoutAddr, 1)

	fn := &fakeFunction{word: fixnum(0), meta: FunctionMetadata{{
		PCOffset: 0, FrameP: true, LayoutAddr: layoutAddr, LayoutLength: 1,
	}}}
	sw := &StackWalker{World: w, Resolver: &fakeResolver{fn: fn, pcOffset: 0}}

	if err := sw.Walk(sp, fp, 0x1000); err != nil {
		t.Fatal(err)
	}
	if got := readWord(slotAddr); got != dxWord {
		t.Fatalf("dangling dx-root slot should be left exactly as found")
	}
}

func TestStackWalkPushedValuesScanned(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	stack := newTestArena(512)

	target := general.addr(300)
	w.setHeader(target, NewHeader(ObjString, 1, false))

	fp := terminatingFrame(stack, 32)
	sp := stack.addr(16)
	writeWord(sp, WithTag(target, TagObject)) // FrameP pushed-values base = sp

	fn := &fakeFunction{word: fixnum(0), meta: FunctionMetadata{{
		PCOffset: 0, FrameP: true, LayoutLength: 0, PushedValues: 1,
	}}}
	sw := &StackWalker{World: w, Resolver: &fakeResolver{fn: fn, pcOffset: 0}}

	if err := sw.Walk(sp, fp, 0x1000); err != nil {
		t.Fatal(err)
	}
	if !w.general.inNewspace(PointerField(readWord(sp))) {
		t.Fatalf("pushed value was not scavenged")
	}
}

func TestStackWalkRejectsFullSaveOnlyFieldsInMidCall(t *testing.T) {
	w, _, _ := newScenarioWorld(t)
	stack := newTestArena(512)
	fp := terminatingFrame(stack, 32)
	sp := stack.addr(16)

	fn := &fakeFunction{word: fixnum(0), meta: FunctionMetadata{{
		PCOffset: 0, FrameP: true, Interruptp: true,
	}}}
	sw := &StackWalker{World: w, Resolver: &fakeResolver{fn: fn, pcOffset: 0}}

	err := sw.Walk(sp, fp, 0x1000)
	if err == nil {
		t.Fatal("expected an error for interruptp set in a mid-call frame")
	}
	if _, ok := err.(*StackMetadataError); !ok {
		t.Fatalf("expected *StackMetadataError, got %T", err)
	}
}

func TestStackWalkTerminatesOnZeroReturnPC(t *testing.T) {
	w, _, _ := newScenarioWorld(t)
	sw := &StackWalker{World: w}
	if err := sw.Walk(0, 0, 0); err != nil {
		t.Fatal(err)
	}
}
