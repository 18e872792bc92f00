package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sciome/bmdexpress-web/internal/projects/codec"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
)

func newPackCmd() *cobra.Command {
	var (
		out      string
		compress bool
	)
	cmd := &cobra.Command{
		Use:   "pack <project.yaml>",
		Short: "Encode a YAML or JSON project as a bundle",
		Long: `Encode a project description as a .bm2 bundle.

Examples:
  # Write liver.bm2 next to the source
  bm2tool pack liver.yaml

  # Uncompressed output to a chosen path
  bm2tool pack liver.json -o projects/liver.bm2 --compress=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bm2"
			}
			n, err := packFile(args[0], out, compress)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "bundle path (default: source name with .bm2)")
	cmd.Flags().BoolVar(&compress, "compress", true, "zstd-compress the bundle")
	return cmd
}

func packFile(src, dst string, compress bool) (int, error) {
	raw, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("reading project: %w", err)
	}
	p, err := parseProject(raw)
	if err != nil {
		return 0, err
	}
	data, err := codec.Encode(p, compress)
	if err != nil {
		return 0, fmt.Errorf("encoding bundle: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing bundle: %w", err)
	}
	return len(data), nil
}

// parseProject accepts YAML or JSON; JSON documents are valid YAML.
func parseProject(raw []byte) (*domain.Project, error) {
	var p domain.Project
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing project: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("parsing project: name is required")
	}
	return &p, nil
}
