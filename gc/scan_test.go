package gc

import "testing"

func TestScanWordConsRelocatesBothSlots(t *testing.T) {
	w, general, cons := newScenarioWorld(t)
	target := general.addr(300) // oldspace
	w.setHeader(target, NewHeader(ObjString, 1, false))

	addr := cons.addr(4) // newspace cons, so ScanWord only touches its slots
	writeWord(addr, WithTag(target, TagObject))
	writeWord(wordAt(addr, 1), WithTag(target, TagObject))

	if err := w.ScanWord(WithTag(addr, TagCons)); err != nil {
		t.Fatal(err)
	}
	for i := uintptr(0); i < 2; i++ {
		slot := readWord(wordAt(addr, i))
		if !w.general.inNewspace(PointerField(slot)) {
			t.Fatalf("cons slot %d not relocated", i)
		}
	}
}

func TestScanWordSymbolWalksSixSlots(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	w.setHeader(addr, NewHeader(ObjSymbol, 0, false))
	target := general.addr(300)
	w.setHeader(target, NewHeader(ObjString, 1, false))
	for i := uintptr(1); i <= 6; i++ {
		writeWord(wordAt(addr, i), WithTag(target, TagObject))
	}

	if err := w.ScanWord(WithTag(addr, TagObject)); err != nil {
		t.Fatal(err)
	}
	for i := uintptr(1); i <= 6; i++ {
		slot := readWord(wordAt(addr, i))
		if !w.general.inNewspace(PointerField(slot)) {
			t.Fatalf("symbol slot %d not relocated", i)
		}
	}
}

func TestScanWordComplexArrayIsLeaf(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	w.setHeader(addr, NewHeader(ObjComplexArray, 0, false))
	// Garbage in the metadata words must be left alone.
	writeWord(wordAt(addr, 1), Word(0xdeadbeef))

	if err := w.ScanWord(WithTag(addr, TagObject)); err != nil {
		t.Fatal(err)
	}
	if got := readWord(wordAt(addr, 1)); got != Word(0xdeadbeef) {
		t.Fatalf("ScanWord touched complex-array metadata: %#x", got)
	}
}

func TestScanWordLeafTypesNoop(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	leafTypes := []ObjectType{
		ObjNumericArray, ObjBignum, ObjSingleFloat, ObjDoubleFloat,
		ObjLongFloat, ObjSIMDVector, ObjUnboundValue, ObjString,
	}
	for i, ot := range leafTypes {
		addr := general.addr(4 + i*8)
		w.setHeader(addr, NewHeader(ot, 0, false))
		if err := w.ScanWord(WithTag(addr, TagObject)); err != nil {
			t.Fatalf("%v: %v", ot, err)
		}
	}
}

func TestScanWordFreelistEntryIsFatal(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	w.setHeader(addr, NewHeader(ObjFreelistEntry, 4, false))

	err := w.ScanWord(WithTag(addr, TagObject))
	if err == nil {
		t.Fatal("expected an error scanning a freelist entry")
	}
	if _, ok := err.(*ScanError); !ok {
		t.Fatalf("expected *ScanError, got %T", err)
	}
}

func TestScanFunctionWalksConstantPoolOnly(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(4)
	// 2 words of machine code, 2 constants, no gc-info table needed for
	// this test.
	w.setHeader(addr, NewHeader(ObjFunction, PackFunctionData(2, 2, 0), false))
	writeWord(wordAt(addr, 1), Word(0x9090909090909090)) // fake machine code
	writeWord(wordAt(addr, 2), Word(0x9090909090909090))

	target := general.addr(300)
	w.setHeader(target, NewHeader(ObjString, 1, false))
	poolBase := addr + 3*uintptr(wordSize)
	writeWord(poolBase, fixnum(123))
	writeWord(wordAt(poolBase, 1), WithTag(target, TagObject))

	if err := w.ScanWord(WithTag(addr, TagObject)); err != nil {
		t.Fatal(err)
	}

	if got := readWord(poolBase); got != fixnum(123) {
		t.Fatalf("constant pool slot 0 was mutated: %#x", got)
	}
	relocated := readWord(wordAt(poolBase, 1))
	if !w.general.inNewspace(PointerField(relocated)) {
		t.Fatalf("function's constant-pool pointer was not relocated")
	}
}

// TestTransportFunctionCopiesWholeObject confirms Transport's ObjectSize-
// derived copy covers exactly the words scanFunction will address: machine
// code, constant pool, and gc-info table. A size/scan unit mismatch here
// would truncate the copy and leave scanFunction reading into whatever is
// bump-allocated after it.
func TestTransportFunctionCopiesWholeObject(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	addr := general.addr(300) // oldspace
	w.setHeader(addr, NewHeader(ObjFunction, PackFunctionData(2, 2, 1), false))
	writeWord(wordAt(addr, 1), Word(0x9090909090909090))
	writeWord(wordAt(addr, 2), Word(0x9090909090909090))
	poolBase := addr + 3*uintptr(wordSize)
	writeWord(poolBase, fixnum(123))
	writeWord(wordAt(poolBase, 1), fixnum(456))
	writeWord(wordAt(poolBase, 2), Word(0xdeadbeef)) // gc-info word

	h := w.header(addr)
	size, err := ObjectSize(h, addr)
	if err != nil {
		t.Fatal(err)
	}
	if want := uint64(1 + 2 + 2 + 1); size != want {
		t.Fatalf("ObjectSize() = %d, want %d", size, want)
	}

	newW, err := w.Transport(WithTag(addr, TagObject))
	if err != nil {
		t.Fatal(err)
	}
	newAddr := PointerField(newW)

	if err := w.ScanWord(newW); err != nil {
		t.Fatal(err)
	}
	if got := readWord(wordAt(newAddr, 3)); got != fixnum(123) {
		t.Fatalf("pool slot 0 not copied intact: %#x", got)
	}
	if got := readWord(wordAt(newAddr, 4)); got != fixnum(456) {
		t.Fatalf("pool slot 1 not copied intact: %#x", got)
	}
	if got := readWord(wordAt(newAddr, 5)); got != Word(0xdeadbeef) {
		t.Fatalf("gc-info word not copied: %#x", got)
	}
}
