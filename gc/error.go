package gc

import (
	"fmt"
)

// NestedCycleError is returned by Cycle when a collection is already in
// progress (spec §7, "Nested GC invocation: caller-level error before
// world stop"). It is the one GC error that is recoverable by the caller
// rather than fatal.
type NestedCycleError struct{}

func (*NestedCycleError) Error() string { return "gc: a cycle is already in progress" }

// StackMetadataError reports a forbidden field combination or a missing
// metadata entry discovered while walking a stack (spec §4.4 step 3,
// §7 "Bad stack metadata").
type StackMetadataError struct {
	PC    uintptr
	SP    uintptr
	FP    uintptr
	Field string
	Value string
}

func (e *StackMetadataError) Error() string {
	return fmt.Sprintf("gc: bad stack metadata at pc=%#x sp=%#x fp=%#x: %s=%s",
		e.PC, e.SP, e.FP, e.Field, e.Value)
}

func addrString(a uintptr) string {
	return fmt.Sprintf("%#x", a)
}

func headerString(h Header) string {
	return fmt.Sprintf("{type=%s data=%#x pinned=%v}", h.ObjectTag(), h.Data(), h.PinnedMarked())
}

// fatal reports an unrecoverable GC invariant violation the way the
// teacher's abort()/panic() pair does at the bottom of
// src/runtime/panic.go: print the diagnostic, then panic. Every caller in
// this package that detects a ScanError, TransportError, StackMetadataError,
// or PinnedHeaderError routes it here rather than trying to continue —
// per spec §7, "No error is recoverable locally."
func fatal(p Printer, err error) {
	p.Print("gc: fatal: " + err.Error())
	panic(err)
}
