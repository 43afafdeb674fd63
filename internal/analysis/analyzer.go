// Package analysis produces deterministic diagnostics for a loaded
// topology: what the tables and tree show, and what they silently leave
// out.
//
// Key capabilities:
//   - Schema drift: records whose attributes differ from their table's columns
//   - Orphan displays whose SUBC matches no sub-node address
//   - Duplicate serial numbers and addresses
//   - Fan-out hotspots via Z-score over displays per sub-node
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Mr-Dark-debug/topoview/internal/viewmodel"
	"github.com/Mr-Dark-debug/topoview/pkg/timeutil"
)

// Analyzer inspects one view-model.
type Analyzer struct {
	model  *viewmodel.Model
	labels map[string]string
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLabels sets the menu label overrides used in reports.
func WithLabels(labels map[string]string) Option {
	return func(a *Analyzer) { a.labels = labels }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an analyzer over m.
func NewAnalyzer(m *viewmodel.Model, opts ...Option) *Analyzer {
	a := &Analyzer{model: m, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ============================================================
// Statistics
// ============================================================

// TableStats summarises one table tab.
type TableStats struct {
	Type    viewmodel.RecordType `json:"type"`
	Label   string               `json:"label"`
	Records int                  `json:"records"`
	Columns int                  `json:"columns"`
}

// Stats counts what the loaded document contains.
type Stats struct {
	Elements       int          `json:"elements"`
	Tables         []TableStats `json:"tables"`
	BusUnits       int          `json:"bus_units"`
	SubNodes       int          `json:"sub_nodes"`
	PlacedDisplays int          `json:"placed_displays"`
	OrphanDisplays int          `json:"orphan_displays"`
}

// Stats gathers counts for the tables and the tree.
func (a *Analyzer) Stats() *Stats {
	s := &Stats{Elements: a.model.Document().Count()}
	for _, tv := range a.model.Tables {
		s.Tables = append(s.Tables, TableStats{
			Type:    tv.Type,
			Label:   viewmodel.Label(tv.Type, a.labels),
			Records: tv.Len(),
			Columns: len(tv.Columns),
		})
	}
	for _, bus := range a.model.Tree() {
		s.BusUnits++
		for _, sub := range bus.Children {
			s.SubNodes++
			s.PlacedDisplays += len(sub.Children)
		}
	}
	s.OrphanDisplays = len(viewmodel.OrphanDisplays(a.model.Document()))
	return s
}

// ============================================================
// Schema Drift
// ============================================================

// DriftEntry is a record whose attribute names differ from its table's
// columns. Missing columns render empty; extra attributes are never shown.
type DriftEntry struct {
	Type     viewmodel.RecordType `json:"type"`
	Position int                  `json:"position"` // 1-based, document order
	Key      string               `json:"key"`
	Missing  []string             `json:"missing,omitempty"`
	Extra    []string             `json:"extra,omitempty"`
}

// DetectSchemaDrift compares every record against its table's columns.
func (a *Analyzer) DetectSchemaDrift() []DriftEntry {
	var out []DriftEntry
	for _, tv := range a.model.Tables {
		cols := make(map[string]bool, len(tv.Columns))
		for _, c := range tv.Columns {
			cols[c] = true
		}
		for i, r := range tv.Records {
			var missing, extra []string
			for _, c := range tv.Columns {
				if !r.Has(c) {
					missing = append(missing, c)
				}
			}
			for _, n := range r.Names() {
				if !cols[n] {
					extra = append(extra, n)
				}
			}
			if len(missing) == 0 && len(extra) == 0 {
				continue
			}
			out = append(out, DriftEntry{
				Type:     tv.Type,
				Position: i + 1,
				Key:      recordKey(r),
				Missing:  missing,
				Extra:    extra,
			})
		}
	}
	return out
}

// recordKey picks a human identifier: SERNUM, else the first value.
func recordKey(r viewmodel.Record) string {
	if v := r.Get(viewmodel.AttrSerial); v != "" {
		return v
	}
	if len(r.Attrs) > 0 {
		return r.Attrs[0].Value
	}
	return ""
}

// ============================================================
// Orphans and Duplicates
// ============================================================

// Orphan is a display that the tree cannot place.
type Orphan struct {
	Serial  string `json:"serial"`
	SubC    string `json:"subc"`
	Address string `json:"address"`
}

// FindOrphans lists displays whose SUBC matches no sub-node address.
func (a *Analyzer) FindOrphans() []Orphan {
	var out []Orphan
	for _, d := range viewmodel.OrphanDisplays(a.model.Document()) {
		out = append(out, Orphan{
			Serial:  d.Get(viewmodel.AttrSerial),
			SubC:    d.Get(viewmodel.AttrSubC),
			Address: d.Get(viewmodel.AttrAddress),
		})
	}
	return out
}

// DuplicateKey is a tree key used by more than one node of a kind.
type DuplicateKey struct {
	Kind  string `json:"kind"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FindDuplicates reports repeated bus unit serials, sub-node addresses and
// display serials. Displays are checked over the whole document, placed
// or not.
func (a *Analyzer) FindDuplicates() []DuplicateKey {
	doc := a.model.Document()
	counts := map[viewmodel.NodeKind]map[string]int{
		viewmodel.KindBusUnit: {},
		viewmodel.KindSubNode: {},
		viewmodel.KindDisplay: {},
	}
	for _, bus := range doc.ElementsByTag(string(viewmodel.TypeBusUnit)) {
		counts[viewmodel.KindBusUnit][bus.Attr(viewmodel.AttrSerial)]++
		for _, sub := range bus.ChildrenNamed(string(viewmodel.TypeSub3RS485), string(viewmodel.TypeSub3Module)) {
			counts[viewmodel.KindSubNode][sub.Attr(viewmodel.AttrAddress)]++
		}
	}
	for _, d := range doc.ElementsByTag(string(viewmodel.TypeDisplay)) {
		counts[viewmodel.KindDisplay][d.Attr(viewmodel.AttrSerial)]++
	}

	var out []DuplicateKey
	for _, kind := range []viewmodel.NodeKind{viewmodel.KindBusUnit, viewmodel.KindSubNode, viewmodel.KindDisplay} {
		var keys []string
		for k, n := range counts[kind] {
			if n > 1 {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, DuplicateKey{Kind: kind.String(), Key: k, Count: counts[kind][k]})
		}
	}
	return out
}

// ============================================================
// Fan-out Hotspots
// ============================================================

// FanOutHotspot is a sub-node carrying an unusual number of displays.
type FanOutHotspot struct {
	BusUnit  string  `json:"bus_unit"`
	Address  string  `json:"address"`
	Displays int     `json:"displays"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // "low", "medium", "high"
}

// DetectFanOutHotspots computes the Z-score of displays per sub-node.
//
// A Z-score > 2.0 is a "medium" hotspot, > 3.0 is "high".
func (a *Analyzer) DetectFanOutHotspots() []FanOutHotspot {
	type sample struct {
		bus, addr string
		n         int
	}
	var samples []sample
	for _, bus := range a.model.Tree() {
		for _, sub := range bus.Children {
			samples = append(samples, sample{bus: bus.Key, addr: sub.Key, n: len(sub.Children)})
		}
	}
	if len(samples) < 2 {
		return nil
	}

	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s.n)
	}
	mean, stddev := stat.PopMeanStdDev(xs, nil)
	if stddev == 0 || math.IsNaN(stddev) {
		return nil
	}

	var out []FanOutHotspot
	for i, s := range samples {
		z := stat.StdScore(xs[i], mean, stddev)
		if z <= 1.5 {
			continue
		}
		severity := "low"
		if z > 3.0 {
			severity = "high"
		} else if z > 2.0 {
			severity = "medium"
		}
		out = append(out, FanOutHotspot{
			BusUnit:  s.bus,
			Address:  s.addr,
			Displays: s.n,
			ZScore:   math.Round(z*100) / 100,
			Severity: severity,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZScore > out[j].ZScore
	})
	return out
}

// ============================================================
// Full Report
// ============================================================

// Report is the complete output of `topoview report`.
type Report struct {
	Source      string          `json:"source"`
	GeneratedAt string          `json:"generated_at"`
	Stats       *Stats          `json:"stats"`
	SchemaDrift []DriftEntry    `json:"schema_drift"`
	Orphans     []Orphan        `json:"orphans"`
	Duplicates  []DuplicateKey  `json:"duplicates"`
	Hotspots    []FanOutHotspot `json:"hotspots"`
	Warnings    []string        `json:"warnings"`
}

// FullAnalysis runs every pass and derives warnings from the results.
func (a *Analyzer) FullAnalysis() *Report {
	r := &Report{
		Source:      a.model.Source,
		GeneratedAt: timeutil.FormatTimestamp(a.now()),
		Stats:       a.Stats(),
		SchemaDrift: a.DetectSchemaDrift(),
		Orphans:     a.FindOrphans(),
		Duplicates:  a.FindDuplicates(),
		Hotspots:    a.DetectFanOutHotspots(),
	}

	if len(a.model.Tables) == 0 {
		r.Warnings = append(r.Warnings, "⚠ No CHANNEL, DISPLAY or CONTAINER elements: no table tabs will be shown.")
	}
	if r.Stats.BusUnits == 0 {
		r.Warnings = append(r.Warnings, "⚠ No BUSUNIT elements: the tree is empty.")
	}
	if n := len(r.SchemaDrift); n > 0 {
		extra := 0
		for _, d := range r.SchemaDrift {
			if len(d.Extra) > 0 {
				extra++
			}
		}
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("⚠ SCHEMA DRIFT: %d record(s) differ from their table's columns; %d carry attributes that are never shown.", n, extra))
	}
	if n := len(r.Orphans); n > 0 {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("⚠ %d display(s) are not placed in the tree (SUBC matches no sub-node address).", n))
	}
	for _, d := range r.Duplicates {
		if d.Kind == viewmodel.KindSubNode.String() {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("⚠ DUPLICATE ADDRESS %q on %d sub-nodes: matching displays appear under each.", d.Key, d.Count))
		}
	}
	for _, h := range r.Hotspots {
		if h.Severity == "high" {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("⚠ FAN-OUT HOTSPOT: sub-node %s on %s carries %d displays (Z-score: %.2f).", h.Address, h.BusUnit, h.Displays, h.ZScore))
		}
	}
	return r
}

// FormatReport renders a report as markdown.
func (a *Analyzer) FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString("# Topology Report\n\n")
	fmt.Fprintf(&b, "**Source:** `%s`\n", r.Source)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt)

	if r.Stats != nil {
		s := r.Stats
		b.WriteString("## Summary\n\n")
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		fmt.Fprintf(&b, "| Elements | %d |\n", s.Elements)
		for _, t := range s.Tables {
			fmt.Fprintf(&b, "| %s (%s) | %d records, %d columns |\n", t.Label, t.Type, t.Records, t.Columns)
		}
		fmt.Fprintf(&b, "| Bus units | %d |\n", s.BusUnits)
		fmt.Fprintf(&b, "| Sub-nodes | %d |\n", s.SubNodes)
		fmt.Fprintf(&b, "| Displays in tree | %d |\n", s.PlacedDisplays)
		fmt.Fprintf(&b, "| Orphan displays | %d |\n\n", s.OrphanDisplays)
	}

	if len(r.SchemaDrift) > 0 {
		b.WriteString("## Schema Drift\n\n")
		b.WriteString("| Type | # | Key | Missing | Extra (hidden) |\n")
		b.WriteString("|------|---|-----|---------|----------------|\n")
		for _, d := range r.SchemaDrift {
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
				d.Type, d.Position, mdCell(d.Key), mdCell(strings.Join(d.Missing, ", ")), mdCell(strings.Join(d.Extra, ", ")))
		}
		b.WriteString("\n")
	}

	if len(r.Orphans) > 0 {
		b.WriteString("## Orphan Displays\n\n")
		b.WriteString("| Serial | SUBC | Address |\n")
		b.WriteString("|--------|------|---------|\n")
		for _, o := range r.Orphans {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(o.Serial), mdCell(o.SubC), mdCell(o.Address))
		}
		b.WriteString("\n")
	}

	if len(r.Duplicates) > 0 {
		b.WriteString("## Duplicate Keys\n\n")
		for _, d := range r.Duplicates {
			fmt.Fprintf(&b, "- **%s** `%s` appears %d times\n", d.Kind, d.Key, d.Count)
		}
		b.WriteString("\n")
	}

	if len(r.Hotspots) > 0 {
		b.WriteString("## Fan-out Hotspots\n\n")
		b.WriteString("| Bus unit | Sub-node | Displays | Z-Score | Severity |\n")
		b.WriteString("|----------|----------|----------|---------|----------|\n")
		for _, h := range r.Hotspots {
			fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %s |\n",
				mdCell(h.BusUnit), mdCell(h.Address), h.Displays, h.ZScore, h.Severity)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

func mdCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
