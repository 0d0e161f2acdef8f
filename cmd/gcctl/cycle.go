package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagvm.dev/gcruntime/gc"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one collection cycle over a synthetic heap and print the resulting meters",
	RunE: func(cmd *cobra.Command, args []string) error {
		heap, err := buildSyntheticHeap()
		if err != nil {
			return err
		}
		newRoot, err := heap.runCycle()
		if err != nil {
			return err
		}

		m := heap.world.Meters()
		fmt.Printf("objects copied: %d\n", m.ObjectsCopied())
		fmt.Printf("words copied:   %d\n", m.WordsCopied())
		fmt.Printf("gc epoch:       %d\n", m.GCEpoch())
		fmt.Printf("root relocated to: %#x\n", gc.PointerField(newRoot))
		return nil
	},
}
