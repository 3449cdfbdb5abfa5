// Package hierarchy folds decomposed subject paths into a prefix tree and
// serializes it for a checkbox-tree control, a Markdown outline or Graphviz.
//
// # Assembly
//
// [Assemble] walks each row's hierarchy from a shared root, creating nodes
// on first visit. Only the node where a row terminates receives a label,
// value, description and count; ancestors that no row terminates at stay
// unlabeled placeholders:
//
//	root := hierarchy.Assemble([]hierarchy.Row{
//	    {Hierarchy: []string{"1", "1-01", "1-01-02"}, Description: "Classical Philology"},
//	    {Hierarchy: []string{"1", "1-01"}, Description: "Ancient Cultures"},
//	})
//
// Children keep insertion order, so serializations list subjects in the
// order they were first encountered.
//
// # Serialization
//
//   - [ToTreeList]: label/value/children nodes, JSON-ready
//   - [ToMarkdown]: indented bullet outline
//   - [ToDOT] and [RenderSVG]: Graphviz rendering for visual inspection
package hierarchy

import (
	"github.com/matzehuels/re3facet/pkg/subject"
)

// Node is one hierarchy node. A node owns its children outright.
type Node struct {
	Key         string // Path segment, e.g. "1-01"
	Label       string // Segment and description; empty on placeholders
	Value       string // Segment; empty on placeholders
	Description string
	Count       int

	children map[string]*Node
	order    []string
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{}
}

// Child returns the child stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Children returns the children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.children[k])
	}
	return out
}

// Len returns the number of children.
func (n *Node) Len() int { return len(n.order) }

// IsPlaceholder reports whether no row terminated at n.
func (n *Node) IsPlaceholder() bool { return n.Value == "" }

// Size returns the number of nodes below n.
func (n *Node) Size() int {
	total := 0
	for _, c := range n.children {
		total += 1 + c.Size()
	}
	return total
}

func (n *Node) ensure(key string) *Node {
	if c, ok := n.children[key]; ok {
		return c
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	c := &Node{Key: key}
	n.children[key] = c
	n.order = append(n.order, key)
	return c
}

// Row is one subject path to fold into the tree.
type Row struct {
	Hierarchy   []string
	Description string
	Count       int
}

// Assemble builds the prefix tree for rows. The terminal node of each row
// is overwritten by later rows ending at the same segment.
func Assemble(rows []Row) *Node {
	root := NewRoot()
	for _, r := range rows {
		if len(r.Hierarchy) == 0 {
			continue
		}
		n := root
		for _, seg := range r.Hierarchy {
			n = n.ensure(seg)
		}
		seg := r.Hierarchy[len(r.Hierarchy)-1]
		n.Description = r.Description
		n.Value = seg
		n.Label = seg + " " + r.Description
		n.Count = r.Count
	}
	return root
}

// FromFrequencies assembles the tree of a subject frequency table.
func FromFrequencies(freqs []subject.Frequency) *Node {
	rows := make([]Row, 0, len(freqs))
	for _, f := range freqs {
		rows = append(rows, Row{
			Hierarchy:   f.Subject.Hierarchy,
			Description: f.Subject.Description,
			Count:       f.Count,
		})
	}
	return Assemble(rows)
}
