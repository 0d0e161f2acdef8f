// Package gcconfig loads the collector's region layout and tunables from
// a YAML document, the way the teacher's targets package loads
// targets.yaml (_examples/waj334-sigo/targets/targets.go): a go:embed'd
// default plus an optional on-disk override, unmarshaled with
// gopkg.in/yaml.v3 into a typed document, then translated into the
// plain structs the gc package itself takes no opinion on loading
// (gc.Layout, gc.Config).
package gcconfig

import (
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"tagvm.dev/gcruntime/gc"
)

//go:embed region.yaml
var defaultDocument []byte

// Region is one named address-space window (spec §6, "fixed region
// bases").
type Region struct {
	Name string `yaml:"name"`
	Base uint64 `yaml:"base"`
	Size uint64 `yaml:"size"`
}

// Document is the on-disk shape of a gcconfig file.
type Document struct {
	Regions                []Region `yaml:"regions"`
	ParanoidAllocation      bool   `yaml:"paranoid-allocation"`
	TrimGranularity         uint64 `yaml:"trim-granularity"`
	MinFreeBlocksHeadroom   int64  `yaml:"min-free-blocks-headroom"`
}

// LoadDefault parses the module's embedded region.yaml, the same
// always-available fallback targets.go falls back to via its
// go:embed'd targets.yaml.
func LoadDefault() (*Document, error) {
	return parse(defaultDocument)
}

// Load parses a gcconfig document from path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gcconfig: read %s: %w", path, err)
	}
	return parse(b)
}

func parse(b []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("gcconfig: parse: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// byBase reports whether a sorts before b by base address; Validate
// uses it to sort the region table before its overlap check.
func byBase(a, b Region) bool {
	return a.Base < b.Base
}

// Validate checks that no two regions overlap, sorting a copy of the
// region table by base address first so only adjacent pairs need
// comparing (spec §6's four-plus-stack regions are expected to be
// disjoint; the pinned/wired/general/cons bases are caller-supplied
// constants, not computed, so nothing else enforces this).
func (d *Document) Validate() error {
	regions := append([]Region(nil), d.Regions...)
	slices.SortFunc(regions, byBase)
	for i := 1; i < len(regions); i++ {
		prev, cur := regions[i-1], regions[i]
		if prev.Base+prev.Size > cur.Base {
			return fmt.Errorf("gcconfig: region %q (%#x+%#x) overlaps region %q (%#x)",
				prev.Name, prev.Base, prev.Size, cur.Name, cur.Base)
		}
	}
	return nil
}

// region finds a named region, or the zero Region if absent.
func (d *Document) region(name string) Region {
	i := slices.IndexFunc(d.Regions, func(r Region) bool { return r.Name == name })
	if i < 0 {
		return Region{}
	}
	return d.Regions[i]
}

// Layout translates the document's region table into a gc.Layout.
func (d *Document) Layout() gc.Layout {
	wired, pinned := d.region("wired"), d.region("pinned")
	general, cons := d.region("general"), d.region("cons")
	stack := d.region("stack")
	return gc.Layout{
		WiredBase: uintptr(wired.Base), WiredSize: uintptr(wired.Size),
		PinnedBase: uintptr(pinned.Base), PinnedSize: uintptr(pinned.Size),
		GeneralBase: uintptr(general.Base), GeneralSize: uintptr(general.Size),
		ConsBase: uintptr(cons.Base), ConsSize: uintptr(cons.Size),
		StackBase: uintptr(stack.Base), StackSize: uintptr(stack.Size),
	}
}

// Config translates the document's tunables into a gc.Config.
func (d *Document) Config() gc.Config {
	return gc.Config{
		ParanoidAllocation:    d.ParanoidAllocation,
		TrimGranularity:       uintptr(d.TrimGranularity),
		MinFreeBlocksHeadroom: d.MinFreeBlocksHeadroom,
	}
}
