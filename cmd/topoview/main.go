// topoview CLI: headless access to hardware topology files.
//
// Usage:
//
//	topoview <command> [flags]
//
// Commands:
//
//	tables     Print the table tabs, one page at a time
//	tree       Print the bus unit / sub-node / display hierarchy
//	report     Run topology diagnostics
//	export     Write files into a SQLite snapshot database
//	snapshots  List the snapshots stored in a database
//	show       Print a stored snapshot
//	config     Show or create the config file
//	schema     Print the JSON Schema of a command's JSON output
//	version    Print version information
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/topoview/internal/config"
	"github.com/Mr-Dark-debug/topoview/internal/document"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("topoview: %v", err)
	}
}

// app carries what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
	now        func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "topoview",
		Short:         "Browse XML hardware topology files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.debug {
				debug.SetEnabled(true)
				debug.SetOutput(cmd.ErrOrStderr())
			}
			var err error
			if a.configPath != "" {
				a.cfg, err = config.LoadFrom(a.configPath)
			} else {
				a.cfg, err = config.Load()
			}
			return err
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", os.Getenv("TOPOVIEW_DEBUG") == "1", "Log diagnostics to stderr")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")

	root.AddCommand(
		a.tablesCmd(),
		a.treeCmd(),
		a.reportCmd(),
		a.exportCmd(),
		a.snapshotsCmd(),
		a.showCmd(),
		a.configCmd(),
		schemaCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "topoview v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}
}

// loadModel parses path and derives its view-model.
func loadModel(path string) (*viewmodel.Model, error) {
	start := time.Now()
	doc, err := document.ParseFile(path)
	if err != nil {
		debug.Error("parse %s: %v", path, err)
		return nil, err
	}
	m := viewmodel.Build(doc)
	debug.LogTiming("load "+path, time.Since(start))
	return m, nil
}

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(allowed, "|"))
}
