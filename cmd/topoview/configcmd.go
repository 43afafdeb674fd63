package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Mr-Dark-debug/topoview/internal/config"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return fmt.Errorf("marshaling config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.path(), data)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the config file interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := a.path()
				if path == "" {
					return errors.New("no config directory; pass --config")
				}
				cfg := a.cfg
				if err := runConfigForm(&cfg); err != nil {
					return err
				}
				if err := config.SaveTo(cfg, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) path() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.Path()
}

// configFields holds the form's string values until they are parsed back
// into a Config.
type configFields struct {
	pageSize   string
	pageWindow string
	startDir   string
	watch      bool
	labels     map[viewmodel.RecordType]*string
}

// runConfigForm asks for each setting, prefilled from cfg, and writes the
// answers back into cfg.
func runConfigForm(cfg *config.Config) error {
	f := &configFields{
		pageSize:   strconv.Itoa(cfg.PageSize),
		pageWindow: strconv.Itoa(cfg.PageWindow),
		startDir:   cfg.StartDir,
		watch:      cfg.Watch,
		labels:     make(map[viewmodel.RecordType]*string),
	}

	labelInputs := make([]huh.Field, 0, len(viewmodel.TableTypes))
	for _, t := range viewmodel.TableTypes {
		v := viewmodel.Label(t, cfg.Labels)
		f.labels[t] = &v
		labelInputs = append(labelInputs, huh.NewInput().
			Title(string(t)+" menu label").
			Value(f.labels[t]))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Rows per page").
				Value(&f.pageSize).
				Validate(positive(500)),
			huh.NewInput().
				Title("Page buttons").
				Description("Numbered buttons shown in the pagination bar").
				Value(&f.pageWindow).
				Validate(positive(25)),
			huh.NewInput().
				Title("File picker start directory").
				Description("Empty for the working directory").
				Value(&f.startDir),
			huh.NewConfirm().
				Title("Reload files when they change on disk?").
				Value(&f.watch),
		),
		huh.NewGroup(labelInputs...),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return err
	}
	return f.apply(cfg)
}

func (f *configFields) apply(cfg *config.Config) error {
	var err error
	if cfg.PageSize, err = cast.ToIntE(f.pageSize); err != nil {
		return fmt.Errorf("rows per page: %w", err)
	}
	if cfg.PageWindow, err = cast.ToIntE(f.pageWindow); err != nil {
		return fmt.Errorf("page buttons: %w", err)
	}
	cfg.StartDir = f.startDir
	cfg.Watch = f.watch

	labels := make(map[string]string)
	for _, t := range viewmodel.TableTypes {
		v := *f.labels[t]
		if v != "" && v != viewmodel.Label(t, nil) {
			labels[string(t)] = v
		}
	}
	cfg.Labels = labels
	return nil
}

// positive validates a form field as an integer in [1, limit].
func positive(limit int) func(string) error {
	return func(s string) error {
		n, err := cast.ToIntE(s)
		if err != nil {
			return errors.New("enter a number")
		}
		if n < 1 || n > limit {
			return fmt.Errorf("must be between 1 and %d", limit)
		}
		return nil
	}
}
