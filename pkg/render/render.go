// Package render draws districting plans as Graphviz diagrams.
//
// A plan is rendered as the dual graph with nodes filled by district color
// and cut edges dashed, which makes district boundaries visible at a
// glance. The DOT output can be rendered to SVG or PNG via Graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flipchain/flipchain/pkg/errors"
	"github.com/flipchain/flipchain/pkg/graph"
	"github.com/flipchain/flipchain/pkg/partition"
)

// Options configures plan rendering.
type Options struct {
	// Detailed includes node populations in labels.
	// When false, only the node ID is shown.
	Detailed bool

	// Layout selects the Graphviz layout engine. Empty means "neato",
	// which suits the undirected adjacency structure of dual graphs.
	Layout string
}

// district fill colors, reused cyclically when a plan has more districts.
var palette = []string{
	"#a6cee3", "#b2df8a", "#fb9a99", "#fdbf6f",
	"#cab2d6", "#ffff99", "#1f78b4", "#33a02c",
}

// ToDOT converts a partitioned graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Nodes are filled by district and cut edges are drawn dashed, so the
// district boundary is the set of dashed lines.
func ToDOT(g *graph.Graph, p *partition.Partition, opts Options) string {
	layout := opts.Layout
	if layout == "" {
		layout = "neato"
	}

	var buf bytes.Buffer
	buf.WriteString("graph plan {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=12];\n")
	buf.WriteString("\n")

	colors := districtColors(p)
	for _, n := range g.Nodes() {
		district, _ := p.District(n.ID)
		label := n.ID
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%.0f", n.ID, n.Population)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", n.ID, label, colors[district])
	}

	buf.WriteString("\n")
	for i, e := range g.Edges() {
		if p.IsCutEdge(i) {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// districtColors assigns each district a palette color, in sorted district
// order so colors are stable across renders of the same plan.
func districtColors(p *partition.Partition) map[string]string {
	districts := p.Districts()
	sort.Strings(districts)

	colors := make(map[string]string, len(districts))
	for i, d := range districts {
		colors[d] = palette[i%len(palette)]
	}
	return colors
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

// RenderFormat renders a DOT graph in the named format ("svg" or "png").
func RenderFormat(ctx context.Context, dot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "svg":
		return RenderSVG(ctx, dot)
	case "png":
		return RenderPNG(ctx, dot)
	case "dot":
		return []byte(dot), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported render format %q", format)
	}
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
