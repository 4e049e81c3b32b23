package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/noisegraph/pkg/dag"
	errs "github.com/matzehuels/noisegraph/pkg/errors"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds kind names to node labels and pin names to links.
	Detailed bool
}

// Format is an output format supported by [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q (want dot, svg or png)", s)
}

// ToDOT converts a snapshot to Graphviz DOT source.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for _, row := range g.RowIDs() {
		buf.WriteString("\n  { rank=same;")
		for _, n := range g.NodesInRow(row) {
			fmt.Fprintf(&buf, " %q;", n.ID)
		}
		buf.WriteString(" }\n")
		for _, n := range g.NodesInRow(row) {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(*n, opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e, opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n dag.Node, detailed bool) []string {
	label := n.Label()
	if detailed {
		if kind, ok := n.Meta["kind"].(string); ok {
			label += "\n" + kind
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}

	ready, _ := n.Meta["ready"].(bool)
	dirty, _ := n.Meta["dirty"].(bool)
	switch {
	case !ready:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case dirty:
		attrs = append(attrs, "fillcolor=gold")
	}
	return attrs
}

func edgeAttrs(e dag.Edge, detailed bool) []string {
	var attrs []string
	if detailed {
		from, _ := e.Meta["from_pin"].(string)
		to, _ := e.Meta["to_pin"].(string)
		if from != "" || to != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", from+" → "+to))
		}
	}
	if t, ok := e.Meta["type"].(string); ok && t != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", t))
	}
	return attrs
}

// Render converts DOT source to the requested format. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, src string, format Format) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return RenderSVG(ctx, src)
	case FormatPNG:
		return render(ctx, src, graphviz.PNG)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, src string) ([]byte, error) {
	out, err := render(ctx, src, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

func render(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the view box, so the image scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
