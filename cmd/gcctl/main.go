// Command gcctl is the operator-facing counterpart to the collector
// library: it validates a gcconfig document, inspects a gcmeta-gen
// metadata table, and can drive a collection cycle over a synthetic
// in-process heap for smoke-testing a build — the GC analog of
// cmd/sigoc's build/env subcommands, dispatched through cobra the way
// cmd/sigoc/build.go registers its flags, rather than through the
// plain flag package cmd/sigoc/main.go happens to use for its own
// top-level dispatch.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gcctl",
	Short: "Inspect and exercise the collector runtime",
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("gcctl: %v", err)
	}
}
