// topoview-tui: interactive browser for XML hardware topology files.
//
// Usage:
//
//	topoview-tui [flags] [FILE]
//
// Flags:
//
//	--watch   Reload FILE when it changes on disk
//	--config  Config file (default: $XDG_CONFIG_HOME/topoview/config.yaml)
//	--debug   Write diagnostics to topoview-debug.log (or $TOPOVIEW_LOG)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/topoview/internal/config"
	"github.com/Mr-Dark-debug/topoview/internal/tui"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
)

func main() {
	watch := flag.Bool("watch", false, "Reload the file when it changes on disk")
	configPath := flag.String("config", "", "Config file")
	debugOn := flag.Bool("debug", os.Getenv("TOPOVIEW_DEBUG") == "1", "Write diagnostics to a log file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [FILE]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	// The terminal belongs to the UI, so debug output goes to a file.
	if *debugOn {
		debug.SetEnabled(true)
		closeLog, err := debug.ToFile("")
		if err != nil {
			log.Fatalf("Failed to open debug log: %v", err)
		}
		defer closeLog()
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *watch {
		cfg.Watch = true
	}

	var opts []tui.Option
	if flag.NArg() == 1 {
		opts = append(opts, tui.WithFile(flag.Arg(0)))
	}

	model := tui.NewModel(cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
