package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sciome/bmdexpress-web/internal/projects/codec"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
	"github.com/sciome/bmdexpress-web/internal/projects/locator"
	"github.com/sciome/bmdexpress-web/internal/projects/registry"
	"github.com/sciome/bmdexpress-web/internal/projects/service"
	"github.com/sciome/bmdexpress-web/internal/projects/tabular"
)

func newInspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <bundle.bm2>",
		Short: "Print the contents of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openBundle(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(service.Summarize(sess))
			}
			return printInspect(cmd.OutOrStdout(), sess)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table <bundle.bm2> <kind> <name>",
		Short: "Print one result as TSV",
		Long: `Print the tabular projection of one result as tab-separated values.

Examples:
  bm2tool table liver.bm2 bmd Liver_BMD > liver_bmd.tsv`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseResultKind(args[1])
			if err != nil {
				return err
			}
			sess, err := openBundle(args[0])
			if err != nil {
				return err
			}
			r, err := locator.FindNamed(sess, kind, args[2])
			if err != nil {
				return err
			}
			return tabular.WriteTSV(cmd.OutOrStdout(), tabular.Project(r))
		},
	}
}

// openBundle decodes a bundle into a detached session so the registry
// lookups work unchanged.
func openBundle(path string) (*registry.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	p, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return &registry.Session{Project: p, OriginalFilename: filepath.Base(path)}, nil
}

func printInspect(w io.Writer, sess *registry.Session) error {
	fmt.Fprintf(w, "project: %s\n\n", sess.Project.Name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tCOLUMNS\tROWS")
	for _, kind := range domain.Kinds {
		for _, r := range sess.Project.Results(kind) {
			proj := tabular.Project(r)
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", kind, proj.Name, len(proj.ColumnHeader), len(proj.Rows))
		}
	}
	return tw.Flush()
}
