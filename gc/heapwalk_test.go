package gc

import "testing"

func TestSlotsReportsConsCarCdr(t *testing.T) {
	w, general, cons := newScenarioWorld(t)
	b := general.addr(300)
	w.setHeader(b, NewHeader(ObjString, 1, false))
	a := cons.addr(300)
	writeWord(a, WithTag(b, TagObject))
	writeWord(wordAt(a, 1), fixnum(5))

	slots, err := w.Slots(WithTag(a, TagCons))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 || slots[0] != WithTag(b, TagObject) || slots[1] != fixnum(5) {
		t.Fatalf("Slots(cons) = %v, want [car cdr]", slots)
	}
}

func TestSlotsReportsSimpleVectorElements(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	v := general.addr(300)
	w.setHeader(v, NewHeader(ObjSimpleVector, 2, false))
	writeWord(wordAt(v, 1), fixnum(1))
	writeWord(wordAt(v, 2), fixnum(2))

	slots, err := w.Slots(WithTag(v, TagObject))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 || slots[0] != fixnum(1) || slots[1] != fixnum(2) {
		t.Fatalf("Slots(vector) = %v, want [1 2]", slots)
	}
}

func TestKindReportsObjectTypeOnlyForObjectTag(t *testing.T) {
	w, general, _ := newScenarioWorld(t)
	v := general.addr(300)
	w.setHeader(v, NewHeader(ObjString, 1, false))

	kind, ok := w.Kind(WithTag(v, TagObject))
	if !ok || kind != ObjString {
		t.Fatalf("Kind(object) = (%v, %v), want (ObjString, true)", kind, ok)
	}
	if _, ok := w.Kind(fixnum(3)); ok {
		t.Fatal("Kind(fixnum) should report ok=false")
	}
}
