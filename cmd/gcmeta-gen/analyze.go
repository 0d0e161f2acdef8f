package main

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// FrameSpec is one call site's approximate GC frame description, the
// analog of a code generator's per-return-address metadata record
// (gc.FrameMetadata) computed from SSA liveness instead of from a real
// register allocator and stack frame layout.
type FrameSpec struct {
	PCOffset       int    `yaml:"pc_offset"`
	FrameP         bool   `yaml:"frame_p"`
	LayoutBits     []int  `yaml:"layout_bits"`
	MultipleValues int    `yaml:"multiple_values"`
	Instruction    string `yaml:"instruction"`
}

// FunctionSpec is one analyzed function's frame table, keyed by a name
// the caller can later pair with a real code range (vm.TableResolver
// only knows addresses; gcmeta-gen only knows source).
type FunctionSpec struct {
	Name   string      `yaml:"name"`
	Frames []FrameSpec `yaml:"frames"`
}

// analyzeFunction walks fn's instructions in a single flattened order
// across its blocks, assigning each instruction a sequential pcOffset
// standing in for a real code generator's byte offset, and emits one
// FrameSpec per call-like instruction (the SSA analog of a safepoint):
// spec §4.4 names pending calls, not arbitrary program points, as where
// a frame's metadata must be accurate. The live set at that point is
// approximated as every pointer-shaped SSA value already defined and
// still referenced afterward — a whole-function, not a real
// flow-sensitive, liveness approximation, appropriate for a tool
// analyzing ordinary Go source rather than the lower-level code a real
// per-PC metadata table describes.
func analyzeFunction(fn *ssa.Function) FunctionSpec {
	var order []ssa.Instruction
	indexOf := map[ssa.Instruction]int{}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			indexOf[instr] = len(order)
			order = append(order, instr)
		}
	}

	lastUse := map[ssa.Value]int{}
	for i, instr := range order {
		for _, op := range instr.Operands(nil) {
			if op == nil || *op == nil {
				continue
			}
			if v, ok := (*op).(ssa.Value); ok {
				lastUse[v] = i
			}
		}
	}

	spec := FunctionSpec{Name: fn.String()}
	for i, instr := range order {
		if !isCallLike(instr) {
			continue
		}

		var live []ssa.Value
		for v, last := range lastUse {
			if last <= i {
				continue
			}
			if !pointerLike(v.Type()) {
				continue
			}
			if definedAt, ok := indexOf[asInstruction(v)]; ok && definedAt > i {
				continue
			}
			live = append(live, v)
		}

		bits := make([]int, len(live))
		for j := range bits {
			bits[j] = 1
		}

		spec.Frames = append(spec.Frames, FrameSpec{
			PCOffset:       i,
			FrameP:         true,
			LayoutBits:     bits,
			MultipleValues: resultCount(instr),
			Instruction:    instr.String(),
		})
	}
	return spec
}

func isCallLike(instr ssa.Instruction) bool {
	switch instr.(type) {
	case *ssa.Call, *ssa.Go, *ssa.Defer, *ssa.Panic:
		return true
	default:
		return false
	}
}

// asInstruction returns v as an ssa.Instruction when the value is itself
// one (most non-constant, non-parameter SSA values are), so its
// definition site can be located in indexOf; it returns nil for values
// that never appear as instructions (parameters, constants, globals),
// which the indexOf lookup above then reports as "not found", correctly
// treating them as always already defined.
func asInstruction(v ssa.Value) ssa.Instruction {
	instr, _ := v.(ssa.Instruction)
	return instr
}

func pointerLike(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Pointer, *types.Interface, *types.Slice, *types.Map, *types.Chan, *types.Signature:
		return true
	case *types.Basic:
		return u.Kind() == types.UnsafePointer
	default:
		return false
	}
}

func resultCount(instr ssa.Instruction) int {
	if call, ok := instr.(*ssa.Call); ok {
		if tuple, ok := call.Type().(*types.Tuple); ok {
			return tuple.Len()
		}
	}
	return 0
}
