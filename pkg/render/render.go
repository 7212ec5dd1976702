// Package render turns graphs and partitions into Graphviz DOT and
// rasterized artifacts.
//
// [ToDOT] produces an undirected DOT document with one fill color per part
// and cut edges drawn dashed, which [RenderSVG] and [RenderPNG] pass
// through the embedded Graphviz engine.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/cleavegraph/cleave/pkg/csr"
	"github.com/cleavegraph/cleave/pkg/errors"
)

// defaultPalette holds the part fill colors, reused cyclically when a
// partition has more parts than entries.
var defaultPalette = []string{
	"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3",
	"#a6d854", "#ffd92f", "#e5c494", "#b3b3b3",
}

// Options configures DOT generation.
type Options struct {
	// Palette overrides the part fill colors. Empty selects the default
	// eight-color palette.
	Palette []string

	// ShowWeights labels edges with their weight. Unweighted graphs are
	// never labeled.
	ShowWeights bool

	// Layout selects the Graphviz layout engine. Empty means neato, which
	// suits undirected graphs better than the hierarchical default.
	Layout string
}

// ToDOT converts a graph and an optional partition to Graphviz DOT.
// When part is non-nil it must assign every vertex; vertices are filled
// with their part's palette color and cut edges drawn dashed.
func ToDOT(g *csr.Graph, part []int, opts Options) (string, error) {
	if g == nil {
		return "", errors.New(errors.ErrCodeInvalidRequest, "graph must not be nil")
	}
	if part != nil && len(part) != g.N() {
		return "", errors.New(errors.ErrCodeInvalidRequest, "partition must have length %d, got %d", g.N(), len(part))
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = defaultPalette
	}
	layout := opts.Layout
	if layout == "" {
		layout = "neato"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for u := 0; u < g.N(); u++ {
		if part == nil {
			fmt.Fprintf(&buf, "  %d;\n", u)
			continue
		}
		color := palette[part[u]%len(palette)]
		fmt.Fprintf(&buf, "  %d [fillcolor=%q];\n", u, color)
	}

	buf.WriteString("\n")
	for u := 0; u < g.N(); u++ {
		for v, w := range g.Neighbors(u) {
			if v < u {
				continue // each undirected edge once
			}
			var attrs []string
			if opts.ShowWeights && g.HasEdgeWeights() {
				attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("%d", w)))
			}
			if part != nil && part[u] != part[v] {
				attrs = append(attrs, "style=dashed")
			}
			if len(attrs) == 0 {
				fmt.Fprintf(&buf, "  %d -- %d;\n", u, v)
				continue
			}
			fmt.Fprintf(&buf, "  %d -- %d [", u, v)
			for i, a := range attrs {
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(a)
			}
			buf.WriteString("];\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// RenderSVG renders a DOT document to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT document to PNG using the embedded Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
