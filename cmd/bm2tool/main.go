// Package main implements bm2tool, a CLI for building and inspecting
// project bundles offline.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bm2tool",
		Short: "Build and inspect BMDExpress project bundles",
		Long: `bm2tool packs YAML or JSON project descriptions into .bm2 bundles
and inspects existing bundles without starting the server.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newPackCmd(), newInspectCmd(), newTableCmd())
	return root
}
