package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/jsonutil"
	"github.com/Mr-Dark-debug/topoview/pkg/textutil"
)

// ────────────────────────────────────────────────────────────
// tables
// ────────────────────────────────────────────────────────────

type tablesOptions struct {
	recordType string
	search     string
	page       string
	format     string
	width      int
}

// tablePage is the JSON form of one projected table page.
type tablePage struct {
	Type       string       `json:"type"`
	Label      string       `json:"label"`
	Columns    []string     `json:"columns"`
	Rows       [][]string   `json:"rows"`
	Term       string       `json:"search,omitempty"`
	Matched    int          `json:"matched"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Buttons    []buttonJSON `json:"buttons"`
}

type buttonJSON struct {
	Label    string `json:"label"`
	Page     int    `json:"page"`
	Disabled bool   `json:"disabled"`
	Current  bool   `json:"current,omitempty"`
}

type tablesOutput struct {
	Source string      `json:"source"`
	Menu   []string    `json:"menu"`
	Tables []tablePage `json:"tables"`
}

func (a *app) tablesCmd() *cobra.Command {
	var o tablesOptions
	cmd := &cobra.Command{
		Use:   "tables FILE",
		Short: "Print the table tabs of a topology file",
		Long: `Print the tab menu, then one page of each table (or of the table
selected with --type) together with its pagination bar.

--search filters rows case-insensitively and always starts on page 1
unless --page is given. --page takes a number or "last".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.format, "text", "json"); err != nil {
				return err
			}
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			out, err := a.projectTables(m, o)
			if err != nil {
				return err
			}
			if o.format == "json" {
				return jsonutil.Write(cmd.OutOrStdout(), out)
			}
			printTables(cmd.OutOrStdout(), out, outputWidth(o.width))
			return nil
		},
	}
	cmd.Flags().StringVarP(&o.recordType, "type", "t", "", "Only this record type (CHANNEL, DISPLAY, CONTAINER)")
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "Search term")
	cmd.Flags().StringVarP(&o.page, "page", "p", "1", `Page number or "last"`)
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "Output format: text|json")
	cmd.Flags().IntVar(&o.width, "width", 0, "Output width for text (default: terminal width)")
	return cmd
}

// projectTables drives a session the same way the TUI does: a search
// event, then a jump to the requested page.
func (a *app) projectTables(m *viewmodel.Model, o tablesOptions) (*tablesOutput, error) {
	opts := a.cfg.BrowseOptions()
	session := browse.NewSession(m, opts)

	out := &tablesOutput{Source: m.Source}
	for _, e := range session.Menu(a.cfg.Labels) {
		out.Menu = append(out.Menu, e.Label)
	}

	matched := false
	for i, tv := range m.Tables {
		if o.recordType != "" && !strings.EqualFold(o.recordType, string(tv.Type)) {
			continue
		}
		matched = true

		st := session.Table(i).Apply(tv, browse.SearchChanged{Term: o.search}, opts)
		total := browse.Project(tv, st, opts).TotalPages
		page, err := parsePage(o.page, total)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tv.Type, err)
		}
		st.Page = page

		v := browse.Project(tv, st, opts)
		p := tablePage{
			Type:       string(v.Type),
			Label:      viewmodel.Label(v.Type, a.cfg.Labels),
			Columns:    v.Columns,
			Rows:       v.Rows,
			Term:       v.Term,
			Matched:    v.Matched,
			Total:      v.Total,
			Page:       v.Page,
			TotalPages: v.TotalPages,
		}
		for _, b := range v.Buttons {
			p.Buttons = append(p.Buttons, buttonJSON{Label: b.Label, Page: b.Page, Disabled: b.Disabled, Current: b.Current})
		}
		out.Tables = append(out.Tables, p)
	}

	if o.recordType != "" && !matched {
		var have []string
		for _, tv := range m.Tables {
			have = append(have, string(tv.Type))
		}
		return nil, fmt.Errorf("no %s records in %s (tables: %s)", strings.ToUpper(o.recordType), m.Source, strings.Join(have, ", "))
	}
	return out, nil
}

// parsePage reads a --page value. "last" is the last page; with no pages
// at all (empty search result) only page 1 is accepted.
func parsePage(s string, total int) (int, error) {
	if strings.EqualFold(s, "last") {
		if total == 0 {
			return 1, nil
		}
		return total, nil
	}
	// cast parses with base prefixes and digit separators; a page is
	// plain decimal.
	digits := strings.TrimLeft(s, "0")
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	n, err := cast.ToIntE(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	if n == 1 || (n >= 1 && n <= total) {
		return n, nil
	}
	return 0, fmt.Errorf("page %d out of range (1-%d)", n, max(total, 1))
}

func printTables(w io.Writer, out *tablesOutput, width int) {
	fmt.Fprintf(w, "%s\n", out.Source)
	fmt.Fprintf(w, "Menu: %s\n", strings.Join(out.Menu, " | "))

	for _, t := range out.Tables {
		fmt.Fprintf(w, "\n== %s (%s) ==\n", t.Label, t.Type)
		if len(t.Rows) == 0 {
			if t.Term != "" {
				fmt.Fprintf(w, "No records match %q\n", t.Term)
			} else {
				fmt.Fprintln(w, "No records")
			}
		} else {
			printGrid(w, t.Columns, t.Rows, width)
		}
		fmt.Fprintln(w, renderButtons(t))
	}
}

func printGrid(w io.Writer, header []string, rows [][]string, width int) {
	const gap = 2
	clean := make([][]string, len(rows))
	for i, r := range rows {
		clean[i] = make([]string, len(r))
		for j, c := range r {
			clean[i][j] = textutil.OneLine(c)
		}
	}
	widths := textutil.ColumnWidths(header, clean, width, gap, 3)
	line := func(cells []string) {
		var b strings.Builder
		for i, wd := range widths {
			if i > 0 {
				b.WriteString(strings.Repeat(" ", gap))
			}
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			b.WriteString(textutil.Fit(c, wd))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	line(header)
	for _, r := range clean {
		line(r)
	}
}

// renderButtons draws the pagination bar: enabled controls in brackets,
// the current page as <n>, disabled controls bare.
func renderButtons(t tablePage) string {
	parts := make([]string, 0, len(t.Buttons))
	for _, b := range t.Buttons {
		switch {
		case b.Current:
			parts = append(parts, "<"+b.Label+">")
		case b.Disabled:
			parts = append(parts, b.Label)
		default:
			parts = append(parts, "["+b.Label+"]")
		}
	}
	return fmt.Sprintf("%s   page %d/%d  %d of %d records",
		strings.Join(parts, " "), t.Page, t.TotalPages, t.Matched, t.Total)
}

func outputWidth(flag int) int {
	if flag > 0 {
		return flag
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

// ────────────────────────────────────────────────────────────
// tree
// ────────────────────────────────────────────────────────────

type treeOutput struct {
	Source  string              `json:"source"`
	Rows    []viewmodel.TreeRow `json:"rows"`
	Orphans []string            `json:"orphans"`
}

func (a *app) treeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the bus unit / sub-node / display hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}
			m, err := loadModel(args[0])
			if err != nil {
				return err
			}
			roots := m.Tree()
			orphans := viewmodel.OrphanDisplays(m.Document())

			if format == "json" {
				out := treeOutput{Source: m.Source, Rows: viewmodel.TreeRows(roots), Orphans: []string{}}
				if out.Rows == nil {
					out.Rows = []viewmodel.TreeRow{}
				}
				for _, d := range orphans {
					out.Orphans = append(out.Orphans, d.Get(viewmodel.AttrSerial))
				}
				return jsonutil.Write(cmd.OutOrStdout(), out)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(m.Source, roots, orphans))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json")
	return cmd
}

func renderTree(source string, roots []*viewmodel.TreeNode, orphans []viewmodel.Record) string {
	if len(roots) == 0 {
		return source + "\nNo bus units.\n"
	}
	t := tree.Root(source)
	for _, r := range roots {
		t.Child(treeNode(r))
	}
	s := t.String() + "\n"
	if len(orphans) > 0 {
		s += fmt.Sprintf("\n%d display(s) not placed in the tree:\n", len(orphans))
		for _, d := range orphans {
			s += fmt.Sprintf("  %s (SUBC %s)\n", d.Get(viewmodel.AttrSerial), d.Get(viewmodel.AttrSubC))
		}
	}
	return s
}

func treeNode(n *viewmodel.TreeNode) any {
	label := n.Kind.String() + " " + n.Label()
	if d := n.Detail(); d != "" {
		label += "  " + d
	}
	if len(n.Children) == 0 {
		return label
	}
	t := tree.Root(label)
	for _, c := range n.Children {
		t.Child(treeNode(c))
	}
	return t
}
