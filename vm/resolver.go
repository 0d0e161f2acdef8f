package vm

import (
	"sort"
	"sync"

	"tagvm.dev/gcruntime/gc"
)

// tableFunction is the concrete gc.Function a TableResolver hands back.
type tableFunction struct {
	word gc.Word
	meta gc.FunctionMetadata
}

func (f *tableFunction) Word() gc.Word                 { return f.word }
func (f *tableFunction) Metadata() gc.FunctionMetadata { return f.meta }

// TableResolver is a gc.FunctionResolver backed by a static table of
// (base, limit) -> function entries, the runtime counterpart of the
// per-function metadata tables cmd/gcmeta-gen emits ahead of time (spec
// §9 "Per-PC metadata"). mu guards entries: Register appends under it,
// and ResolveFunction holds it only to sort the entries (on the first
// call after a Register) and take the slice, then searches unlocked.
type TableResolver struct {
	mu      sync.Mutex
	entries []resolverEntry
	sorted  bool
}

type resolverEntry struct {
	base, limit uintptr
	fn          *tableFunction
}

// Register adds one function's code range and metadata table. base is
// the function's entry address, limit its address one past the last
// byte of its machine code; word is the tagged pointer to the
// function's own heap object, scavenged as part of walking a frame
// that calls it (spec §4.4 step 4).
func (r *TableResolver) Register(base, limit uintptr, word gc.Word, meta gc.FunctionMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, resolverEntry{base: base, limit: limit, fn: &tableFunction{word: word, meta: meta}})
	r.sorted = false
}

func (r *TableResolver) ensureSorted() {
	if r.sorted {
		return
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].base < r.entries[j].base })
	r.sorted = true
}

// ResolveFunction implements gc.FunctionResolver by binary-searching
// the registered code ranges for the one containing returnPC.
func (r *TableResolver) ResolveFunction(returnPC uintptr) (gc.Function, uintptr, bool) {
	r.mu.Lock()
	r.ensureSorted()
	entries := r.entries
	r.mu.Unlock()

	i := sort.Search(len(entries), func(i int) bool { return entries[i].base > returnPC })
	if i == 0 {
		return nil, 0, false
	}
	e := entries[i-1]
	if returnPC < e.base || returnPC >= e.limit {
		return nil, 0, false
	}
	return e.fn, returnPC - e.base, true
}
