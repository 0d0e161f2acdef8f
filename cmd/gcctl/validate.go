package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagvm.dev/gcruntime/gcconfig"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config.yaml]",
	Short: "Validate a gcconfig region document and print its layout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc *gcconfig.Document
		var err error
		if len(args) == 1 {
			doc, err = gcconfig.Load(args[0])
		} else {
			doc, err = gcconfig.LoadDefault()
		}
		if err != nil {
			return err
		}

		layout := doc.Layout()
		fmt.Printf("wired:   base=%#016x size=%#x\n", layout.WiredBase, layout.WiredSize)
		fmt.Printf("pinned:  base=%#016x size=%#x\n", layout.PinnedBase, layout.PinnedSize)
		fmt.Printf("general: base=%#016x size=%#x\n", layout.GeneralBase, layout.GeneralSize)
		fmt.Printf("cons:    base=%#016x size=%#x\n", layout.ConsBase, layout.ConsSize)
		fmt.Printf("stack:   base=%#016x size=%#x\n", layout.StackBase, layout.StackSize)
		fmt.Println("regions do not overlap")
		return nil
	},
}
