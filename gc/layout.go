package gc

// RegionKind names one of the five address regions a pointer can fall in,
// per spec §3's "address tag".
type RegionKind uint8

const (
	RegionGeneral RegionKind = iota
	RegionCons
	RegionPinned
	RegionWired
	RegionStack
)

func (r RegionKind) String() string {
	switch r {
	case RegionGeneral:
		return "general"
	case RegionCons:
		return "cons"
	case RegionPinned:
		return "pinned"
	case RegionWired:
		return "wired"
	case RegionStack:
		return "stack"
	default:
		return "unknown-region"
	}
}

// Layout is the fixed address-space map the collector was configured
// against (spec §6: "fixed region bases, e.g. wired region begins at 2MiB,
// pinned at 2GiB"). It is supplied once at startup by gcconfig and never
// mutated; everything that changes cycle to cycle (bump pointers, scan
// fingers, mark-bit parity) lives in the per-region semispace/pinned-area
// state in world.go instead.
type Layout struct {
	WiredBase, WiredSize     uintptr
	PinnedBase, PinnedSize   uintptr
	GeneralBase, GeneralSize uintptr // reserved window, split into two halves
	ConsBase, ConsSize       uintptr // reserved window, split into two halves
	StackBase, StackSize     uintptr
}

// AddressTag classifies a canonical address by range-checking it against
// each region's base and size in the Layout; an address outside every
// region is reported as RegionStack.
func (l *Layout) AddressTag(addr uintptr) RegionKind {
	switch {
	case addr >= l.WiredBase && addr < l.WiredBase+l.WiredSize:
		return RegionWired
	case addr >= l.PinnedBase && addr < l.PinnedBase+l.PinnedSize:
		return RegionPinned
	case addr >= l.GeneralBase && addr < l.GeneralBase+l.GeneralSize:
		return RegionGeneral
	case addr >= l.ConsBase && addr < l.ConsBase+l.ConsSize:
		return RegionCons
	case addr >= l.StackBase && addr < l.StackBase+l.StackSize:
		return RegionStack
	default:
		return RegionStack
	}
}
