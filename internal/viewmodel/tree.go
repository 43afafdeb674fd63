package viewmodel

import (
	"fmt"

	"github.com/Mr-Dark-debug/topoview/internal/document"
)

// NodeKind is the level of a tree node.
type NodeKind int

const (
	KindBusUnit NodeKind = iota
	KindSubNode
	KindDisplay
)

func (k NodeKind) String() string {
	switch k {
	case KindBusUnit:
		return "bus"
	case KindSubNode:
		return "sub"
	case KindDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// TreeNode is one node of the reconstructed hierarchy. Key is SERNUM for
// bus units and displays, ADRESSE for sub-nodes.
type TreeNode struct {
	Kind     NodeKind
	Key      string
	Record   Record
	Children []*TreeNode
}

// Label is the text of the node column.
func (n *TreeNode) Label() string {
	return n.Key
}

// Detail is the text of the details column.
func (n *TreeNode) Detail() string {
	switch n.Kind {
	case KindBusUnit:
		return "Type: " + n.Record.Get(AttrType)
	case KindDisplay:
		return "Address: " + n.Record.Get(AttrAddress)
	default:
		return ""
	}
}

// Index maps an attribute value to the records carrying it, in input order.
type Index map[string][]Record

// IndexBy groups records by the value of attr. Records lacking attr are
// indexed under "".
func IndexBy(records []Record, attr string) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		v := r.Get(attr)
		idx[v] = append(idx[v], r)
	}
	return idx
}

// BuildTree reconstructs bus unit -> sub-node -> display. Sub-nodes are the
// direct SUB3RS485/SUB3MODULE children of a bus unit; displays attach to
// every sub-node whose ADRESSE equals their SUBC.
func BuildTree(doc *document.Document) []*TreeNode {
	bySubC := IndexBy(collect(doc, TypeDisplay), AttrSubC)

	var roots []*TreeNode
	for _, bus := range doc.ElementsByTag(string(TypeBusUnit)) {
		busRec := newRecord(TypeBusUnit, bus)
		root := &TreeNode{Kind: KindBusUnit, Key: busRec.Get(AttrSerial), Record: busRec}

		for _, sub := range bus.ChildrenNamed(string(TypeSub3RS485), string(TypeSub3Module)) {
			subRec := newRecord(RecordType(sub.Name), sub)
			addr := subRec.Get(AttrAddress)
			subNode := &TreeNode{Kind: KindSubNode, Key: addr, Record: subRec}

			for _, d := range bySubC[addr] {
				subNode.Children = append(subNode.Children, &TreeNode{
					Kind:   KindDisplay,
					Key:    d.Get(AttrSerial),
					Record: d,
				})
			}
			root.Children = append(root.Children, subNode)
		}
		roots = append(roots, root)
	}
	return roots
}

// OrphanDisplays returns the displays whose SUBC matches no sub-node placed
// under any bus unit.
func OrphanDisplays(doc *document.Document) []Record {
	addresses := make(map[string]bool)
	for _, bus := range doc.ElementsByTag(string(TypeBusUnit)) {
		for _, sub := range bus.ChildrenNamed(string(TypeSub3RS485), string(TypeSub3Module)) {
			addresses[sub.Attr(AttrAddress)] = true
		}
	}
	var out []Record
	for _, d := range collect(doc, TypeDisplay) {
		if !addresses[d.Get(AttrSubC)] {
			out = append(out, d)
		}
	}
	return out
}

// TreeRow is the flat form handed to the tree widget.
type TreeRow struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parent_id,omitempty"`
	Kind     NodeKind `json:"-"`
	KindName string   `json:"kind"`
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Detail   string   `json:"detail"`
}

// TreeRows flattens roots depth-first. Ids are qualified by their parent's
// id so that an address reused under two bus units stays distinct; exact
// repeats get a "#n" suffix.
func TreeRows(roots []*TreeNode) []TreeRow {
	var rows []TreeRow
	seen := make(map[string]int)

	var walk func(n *TreeNode, parentID string)
	walk = func(n *TreeNode, parentID string) {
		id := n.Kind.String() + "-" + n.Key
		if parentID != "" {
			id = parentID + "/" + id
		}
		seen[id]++
		if c := seen[id]; c > 1 {
			id = fmt.Sprintf("%s#%d", id, c)
		}
		rows = append(rows, TreeRow{
			ID:       id,
			ParentID: parentID,
			Kind:     n.Kind,
			KindName: n.Kind.String(),
			Key:      n.Key,
			Label:    n.Label(),
			Detail:   n.Detail(),
		})
		for _, c := range n.Children {
			walk(c, id)
		}
	}
	for _, r := range roots {
		walk(r, "")
	}
	return rows
}
