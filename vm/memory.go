// Package vm is a hosted (non-bare-metal) implementation of the gc
// package's Supervisor and Thread interfaces: real mmap/mprotect/madvise
// region control via golang.org/x/sys/unix, and a goroutine-registry
// world-stop, standing in for the teacher's //sigo:extern malloc/memcpy
// substrate in src/runtime/memory.go, which has no equivalent outside a
// bare-metal build.
package vm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"tagvm.dev/gcruntime/gc"
)

// ReserveRegion mmaps size bytes of anonymous memory with no access
// rights, the way a copying region's general/cons window is reserved
// once at startup and committed in halves as ProtectMemoryRange is
// called (spec §6, "reserved window").
func ReserveRegion(size uintptr) (base uintptr, err error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("vm: reserve region of %d bytes: %w", size, err)
	}
	return uintptr(unsafe.Pointer(&b[0])), nil
}

func byteSliceAt(base, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), int(size))
}

// protFlags translates gc.MemoryFlags into the unix.PROT_* bits
// mprotect understands. MemZeroFillOnDemand has no separate mprotect
// analogue on Linux/Darwin — a freshly committed anonymous mapping is
// already zero-filled on first touch — so ProtectMemoryRange treats it
// as a no-op beyond the prot bits below.
func protFlags(flags gc.MemoryFlags) int {
	prot := unix.PROT_NONE
	if flags&gc.MemPresent != 0 {
		prot |= unix.PROT_READ
	}
	if flags&gc.MemWritable != 0 {
		prot |= unix.PROT_WRITE
	}
	return prot
}

// ProtectMemoryRange implements gc.Supervisor's memory commitment step
// (spec §4.8 step 5) over mprotect.
func (s *Supervisor) ProtectMemoryRange(base, size uintptr, flags gc.MemoryFlags) error {
	if err := unix.Mprotect(byteSliceAt(base, size), protFlags(flags)); err != nil {
		return fmt.Errorf("vm: protect range %#x+%d: %w", base, size, err)
	}
	return nil
}

// ReleaseMemoryRange implements gc.Supervisor's unmap/trim step (spec
// §4.8 steps 9 and 11): madvise(MADV_DONTNEED) returns the physical
// pages to the OS while keeping the virtual reservation intact, so the
// region can be recommitted by a later ProtectMemoryRange without a
// fresh mmap.
func (s *Supervisor) ReleaseMemoryRange(base, size uintptr) error {
	if size == 0 {
		return nil
	}
	b := byteSliceAt(base, size)
	if err := unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return fmt.Errorf("vm: release range %#x+%d: %w", base, size, err)
	}
	return unix.Madvise(b, unix.MADV_DONTNEED)
}
