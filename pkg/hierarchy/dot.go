package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the tree below root to Graphviz DOT, left to right.
// Placeholder nodes are drawn dashed.
func ToDOT(root *Node) string {
	var buf bytes.Buffer
	buf.WriteString("digraph subjects {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if root != nil {
		writeDOT(&buf, root, "")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOT(buf *bytes.Buffer, n *Node, parentID string) {
	for _, c := range n.Children() {
		id := c.Key
		if parentID != "" {
			id = parentID + "/" + c.Key
		}
		attrs := fmt.Sprintf("label=%q", c.displayLabel(true))
		if c.IsPlaceholder() {
			attrs += ", style=\"rounded,filled,dashed\", fillcolor=lightgrey"
		}
		fmt.Fprintf(buf, "  %q [%s];\n", id, attrs)
		if parentID != "" {
			fmt.Fprintf(buf, "  %q -> %q;\n", parentID, id)
		}
		writeDOT(buf, c, id)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units so browsers scale the outline to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
