package gc

import "golang.org/x/exp/slices"

// IncomingArgsKind names how a frame records its incoming argument count
// (spec §4.4 step 2, "incoming_arguments").
type IncomingArgsKind uint8

const (
	IncomingArgsNone IncomingArgsKind = iota
	IncomingArgsSlot                  // an integer stack slot index
	IncomingArgsRCX                   // register rcx (full-save frames only)
)

// IncomingArgs is the incoming_arguments metadata field.
type IncomingArgs struct {
	Kind      IncomingArgsKind
	SlotIndex int
}

// ExtraRegisters names which register group is live in a full-save frame
// (spec §4.5a).
type ExtraRegisters uint8

const (
	ExtraRegistersNone ExtraRegisters = iota
	ExtraRegistersRAX
	ExtraRegistersRAXRCX
	ExtraRegistersRAXRCXRDX
)

// FrameMetadata is the GC state effective just before a given return
// address, as produced by the code generator (spec §4.4 step 2 and §9
// "Per-PC metadata").
type FrameMetadata struct {
	PCOffset uintptr

	FrameP               bool
	Interruptp           bool
	PushedValues         int
	PushedValuesRegister bool
	LayoutAddr           uintptr
	LayoutLength         int // in bits
	MultipleValues       int
	IncomingArguments    IncomingArgs
	BlockOrTagbodyThunk  bool
	ExtraRegisters       ExtraRegisters
}

// FunctionMetadata is one function's metadata table, sorted ascending by
// PCOffset, as map_function_gc_metadata would enumerate it.
type FunctionMetadata []FrameMetadata

// Lookup selects the entry with the greatest PCOffset <= offset, per
// spec §4.4 step 2 ("greatest offset ≤ query").
func (t FunctionMetadata) Lookup(offset uintptr) (FrameMetadata, bool) {
	i, found := slices.BinarySearchFunc(t, offset, func(e FrameMetadata, target uintptr) int {
		switch {
		case e.PCOffset < target:
			return -1
		case e.PCOffset > target:
			return 1
		default:
			return 0
		}
	})
	if found {
		return t[i], true
	}
	// i is the index of the first entry with PCOffset > offset, so the
	// entry we want, if any, is just before it.
	if i == 0 {
		return FrameMetadata{}, false
	}
	return t[i-1], true
}

// Function is a resolved function object: the tagged pointer the walker
// must scavenge, plus its metadata table.
type Function interface {
	Word() Word
	Metadata() FunctionMetadata
}

// FunctionResolver resolves a return address to its enclosing function
// and the PC's offset within it — the collector's view of
// return_address_to_function (spec §6).
type FunctionResolver interface {
	ResolveFunction(returnPC uintptr) (fn Function, pcOffset uintptr, ok bool)
}
