// Command gcmeta-gen statically analyzes a Go package and emits an
// approximate per-function, per-call-site GC frame metadata table in
// the same shape vm.LoadFunctionTable expects (spec §9, "Per-PC
// metadata" — ahead-of-time, not computed by the collector itself).
//
// It is the closest a hosted Go toolchain can come to the code
// generator step that, in a native compiler, walks the emitted machine
// code and records which stack slots hold live pointers at each
// return address: here the "code" being walked is a target package's
// own SSA form, and the "pc offset" is a position in that SSA
// instruction stream rather than a byte offset, but the resulting
// table has the same (pc_offset, live pointer slots) shape a real one
// would.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/tools/go/ssa"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var genOpts = struct {
	output string
}{}

var rootCmd = &cobra.Command{
	Use:   "gcmeta-gen [package directory]",
	Short: "Generate approximate per-PC GC frame metadata for a Go package",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		table, err := generate(dir)
		if err != nil {
			return err
		}

		out := os.Stdout
		if genOpts.output != "" {
			f, err := os.Create(genOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(table)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&genOpts.output, "output", "o", "", "output file (default stdout)")
}

// Table is the document gcmeta-gen writes and vm.LoadFunctionTable
// reads back.
type Table struct {
	Module    string         `yaml:"module"`
	Functions []FunctionSpec `yaml:"functions"`
}

func generate(dir string) (*Table, error) {
	_, modulePath, err := findModule(dir)
	if err != nil {
		return nil, err
	}

	p := newProgram(dir)
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("gcmeta-gen: parse %s: %w", dir, err)
	}
	if err := p.build(); err != nil {
		return nil, fmt.Errorf("gcmeta-gen: build %s: %w", dir, err)
	}

	table := Table{Module: modulePath}
	var walk func(fn *ssa.Function)
	walk = func(fn *ssa.Function) {
		if fn.Blocks == nil {
			return
		}
		table.Functions = append(table.Functions, analyzeFunction(fn))
		for _, anon := range fn.AnonFuncs {
			walk(anon)
		}
	}
	for _, member := range p.ssaPkg.Members {
		if fn, ok := member.(*ssa.Function); ok {
			walk(fn)
		}
	}

	return &table, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("gcmeta-gen: %v", err)
	}
}
