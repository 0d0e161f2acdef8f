package vm

import (
	"fmt"
	"io"
	"unsafe"

	"gopkg.in/yaml.v3"

	"tagvm.dev/gcruntime/gc"
)

// frameSpec mirrors cmd/gcmeta-gen's FrameSpec document shape. The two
// packages are deliberately not shared: gcmeta-gen's shape is a
// generation-time concern, this one a load-time concern, and keeping
// them textually separate lets either evolve without forcing a shared
// dependency between a CLI tool and the runtime.
type frameSpec struct {
	PCOffset       int    `yaml:"pc_offset"`
	FrameP         bool   `yaml:"frame_p"`
	LayoutBits     []int  `yaml:"layout_bits"`
	MultipleValues int    `yaml:"multiple_values"`
	Instruction    string `yaml:"instruction"`
}

type functionSpec struct {
	Name   string      `yaml:"name"`
	Frames []frameSpec `yaml:"frames"`
}

type metadataDocument struct {
	Functions []functionSpec `yaml:"functions"`
}

// FunctionRangeResolver maps a function metadata table's name (as
// gcmeta-gen recorded it, an SSA-qualified function name) to the
// function's actual code range and its own tagged heap pointer, once
// that information is known — typically once a loader has mapped the
// target image and can answer "where does this function's code
// actually live".
type FunctionRangeResolver func(name string) (base, limit uintptr, word gc.Word, ok bool)

// LoadFunctionTable parses a gcmeta-gen YAML document and builds a
// TableResolver from it, the load-time counterpart of spec §9's offline
// metadata generation step: the table itself is produced ahead of time,
// but the (base, limit) pairs it is keyed by are only known once the
// corresponding code has actually been loaded, hence the separate
// resolve callback rather than addresses baked into the document.
//
// Each frame's layout_bits list is copied into its own backing array so
// FrameMetadata.LayoutAddr can point directly at real memory the
// resulting TableResolver keeps alive for as long as it is reachable.
func LoadFunctionTable(r io.Reader, resolve FunctionRangeResolver) (*TableResolver, error) {
	var doc metadataDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("vm: decode function metadata table: %w", err)
	}

	tr := &TableResolver{}
	for _, fs := range doc.Functions {
		base, limit, word, ok := resolve(fs.Name)
		if !ok {
			continue
		}
		tr.Register(base, limit, word, buildMetadata(fs))
	}
	return tr, nil
}

func buildMetadata(fs functionSpec) gc.FunctionMetadata {
	meta := make(gc.FunctionMetadata, 0, len(fs.Frames))
	for _, f := range fs.Frames {
		bitmap := packBits(f.LayoutBits)
		var layoutAddr uintptr
		if len(bitmap) > 0 {
			layoutAddr = uintptr(unsafe.Pointer(&bitmap[0]))
		}
		meta = append(meta, gc.FrameMetadata{
			PCOffset:       uintptr(f.PCOffset),
			FrameP:         f.FrameP,
			LayoutAddr:     layoutAddr,
			LayoutLength:   len(f.LayoutBits),
			MultipleValues: f.MultipleValues,
		})
	}
	return meta
}

// packBits packs a list of 0/1 values into 64-bit words, least
// significant bit first, the same bit order gc's bitSet walks when it
// reads a FrameMetadata's layout (gc/stackwalk.go).
func packBits(bits []int) []uint64 {
	if len(bits) == 0 {
		return nil
	}
	words := make([]uint64, (len(bits)+63)/64)
	for i, b := range bits {
		if b != 0 {
			words[i/64] |= 1 << uint(i%64)
		}
	}
	return words
}
