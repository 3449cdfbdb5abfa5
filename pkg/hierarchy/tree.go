package hierarchy

import (
	"strconv"
	"strings"
)

// TreeNode is the checkbox-tree projection of a Node.
type TreeNode struct {
	Label    string     `json:"label"`
	Value    string     `json:"value"`
	Children []TreeNode `json:"children,omitempty"`
}

type treeOptions struct {
	counts bool
}

// TreeOption configures ToTreeList.
type TreeOption func(*treeOptions)

// WithCounts appends " (n)" to the label of every node with a count.
func WithCounts() TreeOption {
	return func(o *treeOptions) { o.counts = true }
}

// ToTreeList converts the children of root into tree nodes, in insertion
// order. Label and value fall back to the node key; leaves carry no
// children. An empty root yields an empty, non-nil slice.
func ToTreeList(root *Node, opts ...TreeOption) []TreeNode {
	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if root == nil {
		return []TreeNode{}
	}
	return toTreeList(root, o)
}

func toTreeList(n *Node, o treeOptions) []TreeNode {
	out := make([]TreeNode, 0, n.Len())
	for _, c := range n.Children() {
		tn := TreeNode{Label: c.displayLabel(o.counts), Value: c.Value}
		if tn.Value == "" {
			tn.Value = c.Key
		}
		if c.Len() > 0 {
			tn.Children = toTreeList(c, o)
		}
		out = append(out, tn)
	}
	return out
}

func (n *Node) displayLabel(counts bool) string {
	label := n.Label
	if label == "" {
		label = n.Key
	}
	if counts && n.Count > 0 {
		label += " (" + strconv.Itoa(n.Count) + ")"
	}
	return label
}

// ToMarkdown renders the children of root as a bullet outline, one
// "- label" line per node, indented two spaces per level starting at depth.
func ToMarkdown(root *Node, depth int) string {
	var b strings.Builder
	if root != nil {
		writeMarkdown(&b, root, max(depth, 0))
	}
	return b.String()
}

func writeMarkdown(b *strings.Builder, n *Node, depth int) {
	for _, c := range n.Children() {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(c.displayLabel(false))
		b.WriteByte('\n')
		writeMarkdown(b, c, depth+1)
	}
}
