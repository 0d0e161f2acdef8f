package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// metaDocument mirrors the document gcmeta-gen writes, read here only
// to report shape (function and frame counts), not to build a live
// resolver the way vm.LoadFunctionTable does.
type metaDocument struct {
	Functions []struct {
		Name   string `yaml:"name"`
		Frames []struct {
			PCOffset int `yaml:"pc_offset"`
		} `yaml:"frames"`
	} `yaml:"functions"`
}

var metaCmd = &cobra.Command{
	Use:   "meta [table.yaml]",
	Short: "Summarize a gcmeta-gen metadata table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var doc metaDocument
		if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
			return fmt.Errorf("gcctl: decode %s: %w", args[0], err)
		}

		totalFrames := 0
		for _, fn := range doc.Functions {
			totalFrames += len(fn.Frames)
			fmt.Printf("%-40s %4d frame(s)\n", fn.Name, len(fn.Frames))
		}
		fmt.Printf("%d function(s), %d frame(s) total\n", len(doc.Functions), totalFrames)
		return nil
	},
}
