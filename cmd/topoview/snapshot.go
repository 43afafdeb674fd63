package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Mr-Dark-debug/topoview/internal/database"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/debug"
	"github.com/Mr-Dark-debug/topoview/pkg/jsonutil"
	"github.com/Mr-Dark-debug/topoview/pkg/timeutil"
)

// parseWorkers bounds concurrent parses during export.
const parseWorkers = 4

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export FILE... --out DB",
		Short: "Write topology files into a SQLite snapshot database",
		Long: `Parse each FILE and store its tables and tree rows as one snapshot.
Exporting into an existing database appends new snapshots. Files are
parsed in parallel; nothing is written unless every file parses.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer debug.LogEnterExit("export")()
			models, err := loadAll(args)
			if err != nil {
				return err
			}

			store, err := database.NewDBService(out)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, m := range models {
				start := time.Now()
				snap := database.NewSnapshot(m, a.cfg.Labels, a.now())
				id, err := store.SaveSnapshot(snap)
				if err != nil {
					return fmt.Errorf("saving %s: %w", m.Source, err)
				}
				debug.With(map[string]any{
					"snapshot": id,
					"tables":   len(snap.Tables),
					"tree":     len(snap.TreeRows),
					"took":     time.Since(start),
				}, "exported "+m.Source)
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %d: %s (%d elements, %d tables, %d tree rows)\n",
					id, m.Source, snap.Elements, len(snap.Tables), len(snap.TreeRows))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "SQLite database file to write")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// loadAll parses paths concurrently and returns the models in argument
// order, or the first parse error.
func loadAll(paths []string) ([]*viewmodel.Model, error) {
	models := make([]*viewmodel.Model, len(paths))
	eg := errgroup.Group{}
	eg.SetLimit(parseWorkers)
	for i, p := range paths {
		eg.Go(func() error {
			m, err := loadModel(p)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

func (a *app) snapshotsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "snapshots DB",
		Short: "List the snapshots stored in a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}
			store, err := openExisting(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.ListSnapshots()
			if err != nil {
				return err
			}
			if format == "json" {
				if infos == nil {
					infos = []database.SnapshotInfo{}
				}
				return jsonutil.Write(cmd.OutOrStdout(), infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots.")
				return nil
			}
			for _, s := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %6d elements  %s (%s)\n", s.ID, timeutil.FormatTimestamp(s.CreatedAt),
					s.Elements, s.Source, timeutil.RelativeTime(s.CreatedAt, a.now()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json")
	return cmd
}

type snapshotOutput struct {
	ID     int64               `json:"id"`
	Tables []storedTable       `json:"tables,omitempty"`
	Tree   []*database.TreeRow `json:"tree,omitempty"`

	showTree bool
}

type storedTable struct {
	database.TableInfo
	Rows [][]string `json:"rows"`
}

func (a *app) showCmd() *cobra.Command {
	var (
		id         int64
		recordType string
		showTree   bool
		format     string
		width      int
	)
	cmd := &cobra.Command{
		Use:   "show DB",
		Short: "Print a stored snapshot",
		Long: `Print the tables of a snapshot (the newest unless --snapshot is
given), or its tree rows with --tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}
			store, err := openExisting(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if id == 0 {
				if id, err = store.LatestSnapshot(); err != nil {
					return err
				}
			}
			out, err := readSnapshot(store, id, recordType, showTree)
			if err != nil {
				return err
			}
			if format == "json" {
				return jsonutil.Write(cmd.OutOrStdout(), out)
			}
			printSnapshot(cmd.OutOrStdout(), out, outputWidth(width))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "snapshot", 0, "Snapshot id (default: newest)")
	cmd.Flags().StringVarP(&recordType, "type", "t", "", "Only this record type")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print tree rows instead of tables")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json")
	cmd.Flags().IntVar(&width, "width", 0, "Output width for text (default: terminal width)")
	return cmd
}

func readSnapshot(store database.Store, id int64, recordType string, showTree bool) (*snapshotOutput, error) {
	out := &snapshotOutput{ID: id, showTree: showTree}
	if showTree {
		rows, err := store.QueryTreeRows(id)
		if err != nil {
			return nil, err
		}
		out.Tree = rows
		return out, nil
	}

	tables, err := store.ListTables(id)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if recordType != "" && !strings.EqualFold(recordType, t.Type) {
			continue
		}
		recs, err := store.QueryRecords(id, t.Type)
		if err != nil {
			return nil, err
		}
		st := storedTable{TableInfo: t, Rows: make([][]string, len(recs))}
		for i, r := range recs {
			row := make([]string, len(t.Columns))
			for j, c := range t.Columns {
				row[j] = r.Get(c)
			}
			st.Rows[i] = row
		}
		out.Tables = append(out.Tables, st)
	}
	return out, nil
}

func printSnapshot(w io.Writer, s *snapshotOutput, width int) {
	fmt.Fprintf(w, "snapshot %d\n", s.ID)
	if s.showTree {
		if len(s.Tree) == 0 {
			fmt.Fprintln(w, "No bus units.")
		}
		depth := make(map[string]int, len(s.Tree))
		for _, r := range s.Tree {
			if r.ParentID != "" {
				depth[r.ID] = depth[r.ParentID] + 1
			}
			line := fmt.Sprintf("%s%s %s  %s", strings.Repeat("  ", depth[r.ID]), r.Kind, r.Label, r.Detail)
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
		return
	}
	for _, t := range s.Tables {
		fmt.Fprintf(w, "\n== %s (%s) %d records ==\n", t.Label, t.Type, t.Records)
		printGrid(w, t.Columns, t.Rows, width)
	}
}

// openExisting opens a database for reading without creating a new one
// for a mistyped path.
func openExisting(path string) (*database.DBService, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return database.NewDBService(path)
}
