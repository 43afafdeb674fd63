package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mr-Dark-debug/topoview/internal/analysis"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
	"github.com/Mr-Dark-debug/topoview/pkg/jsonutil"
)

func (a *app) reportCmd() *cobra.Command {
	var format string
	var raw bool
	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Run topology diagnostics",
		Long: `Report counts per record type, schema drift, displays missing from
the tree, duplicate keys and sub-nodes with unusual display fan-out.

Markdown is rendered for the terminal when stdout is one; pass --raw to
print the markdown source instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "markdown", "json"); err != nil {
				return err
			}
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			an := analysis.NewAnalyzer(m, analysis.WithLabels(a.cfg.Labels), analysis.WithClock(a.now))
			report := an.FullAnalysis()

			if format == "json" {
				return jsonutil.Write(cmd.OutOrStdout(), report)
			}
			md := an.FormatReport(report)
			if raw || !stdoutIsTerminal(cmd.OutOrStdout()) {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			return writeMarkdown(cmd.OutOrStdout(), md)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown|json")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal rendering")
	return cmd
}

// stdoutIsTerminal is true only when w is the process stdout attached to
// a terminal.
func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && term.IsTerminal(int(f.Fd()))
}

func writeMarkdown(w io.Writer, md string) error {
	width := outputWidth(0)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		debug.Warn("glamour renderer: %v", err)
		_, err = fmt.Fprint(w, md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		debug.Warn("glamour render: %v", err)
		out = md
	}
	_, err = fmt.Fprint(w, out)
	return err
}
