package vm

import (
	"strings"
	"testing"
	"unsafe"

	"tagvm.dev/gcruntime/gc"
)

const sampleTable = `
functions:
  - name: "pkg.Foo"
    frames:
      - pc_offset: 3
        frame_p: true
        layout_bits: [1, 0, 1]
        multiple_values: 0
      - pc_offset: 9
        frame_p: true
        layout_bits: [1]
        multiple_values: 1
`

func TestLoadFunctionTableBuildsResolvableEntries(t *testing.T) {
	resolve := func(name string) (uintptr, uintptr, gc.Word, bool) {
		if name != "pkg.Foo" {
			return 0, 0, 0, false
		}
		return 0x1000, 0x1100, gc.Word(0x1000), true
	}

	tr, err := LoadFunctionTable(strings.NewReader(sampleTable), resolve)
	if err != nil {
		t.Fatal(err)
	}

	fn, pcOffset, ok := tr.ResolveFunction(0x1000 + 9)
	if !ok {
		t.Fatal("ResolveFunction did not find pkg.Foo")
	}
	if pcOffset != 9 {
		t.Fatalf("pcOffset = %d, want 9", pcOffset)
	}

	frame, ok := fn.Metadata().Lookup(9)
	if !ok {
		t.Fatal("Lookup(9) did not find a frame")
	}
	if frame.LayoutLength != 1 {
		t.Fatalf("LayoutLength = %d, want 1", frame.LayoutLength)
	}
	if got := *(*uint64)(unsafe.Pointer(frame.LayoutAddr)); got&1 == 0 {
		t.Fatal("expected bit 0 set for second frame's layout")
	}
}

func TestLoadFunctionTableSkipsUnresolvedFunctions(t *testing.T) {
	resolve := func(name string) (uintptr, uintptr, gc.Word, bool) { return 0, 0, 0, false }

	tr, err := LoadFunctionTable(strings.NewReader(sampleTable), resolve)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := tr.ResolveFunction(0x1000); ok {
		t.Fatal("expected no functions to resolve")
	}
}
