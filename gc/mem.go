package gc

import "unsafe"

// ptrAt and the helpers below are this package's equivalent of the
// teacher's src/runtime/memory.go externs (malloc/memcpy/memmove as
// //sigo:extern declarations onto libc). This collector runs hosted, not
// bare-metal, so the same operations are plain Go over unsafe.Pointer
// instead of linked C symbols.

func ptrAt(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr) //nolint:govet
}

func readWord(addr uintptr) Word {
	return *(*Word)(ptrAt(addr))
}

func writeWord(addr uintptr, w Word) {
	*(*Word)(ptrAt(addr)) = w
}

// memcpyWords copies n words from src to dst. Regions must not overlap.
func memcpyWords(dst, src uintptr, n uintptr) {
	dstSlice := unsafe.Slice((*Word)(ptrAt(dst)), n)
	srcSlice := unsafe.Slice((*Word)(ptrAt(src)), n)
	copy(dstSlice, srcSlice)
}

// zeroWords zeroes n words starting at addr.
func zeroWords(addr uintptr, n uintptr) {
	s := unsafe.Slice((*Word)(ptrAt(addr)), n)
	for i := range s {
		s[i] = 0
	}
}

func wordAt(addr uintptr, i uintptr) uintptr {
	return addr + i*uintptr(wordSize)
}
