package main

import (
	"os"

	"github.com/spf13/cobra"

	"tagvm.dev/gcruntime/gc"
	"tagvm.dev/gcruntime/heapgraph"
)

var dumpOpts = struct {
	output   string
	runCycle bool
}{}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the heap graph as Graphviz DOT, the operator-facing counterpart to the copied/words meters",
	RunE: func(cmd *cobra.Command, args []string) error {
		heap, err := buildSyntheticHeap()
		if err != nil {
			return err
		}

		root := heap.root
		if dumpOpts.runCycle {
			if root, err = heap.runCycle(); err != nil {
				return err
			}
		}

		snap, err := heapgraph.Build(heap.world, []gc.Word{root})
		if err != nil {
			return err
		}

		out := os.Stdout
		if dumpOpts.output != "" {
			f, err := os.Create(dumpOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return snap.WriteDOT(out)
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOpts.output, "output", "o", "", "output file (default stdout)")
	dumpCmd.Flags().BoolVar(&dumpOpts.runCycle, "cycle", false, "run one collection cycle before dumping")
}
