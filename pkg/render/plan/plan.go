// Package plan visualizes the stage execution plan as a Graphviz diagram.
//
// The diagram shows, for one series type, every stage that would run and the
// order it runs in: one cluster per stage kind, stages chained in priority
// order. Whole-series stages (which never chunk) are drawn dashed.
package plan

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/chartpipe/pkg/pipeline"
)

// kind cluster fill colors, preprocess through layout.
var kindColors = [...]string{"#e8f4fd", "#e8fde8", "#fdf6e8", "#fde8ef"}

// ToDOT renders the execution plan for one series type as Graphviz DOT. The
// resulting string can be rendered with [RenderSVG].
func ToDOT(reg *pipeline.Registry, seriesType string) string {
	if reg == nil {
		reg = pipeline.Default()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("\n")

	var prev string
	for ki, kind := range pipeline.Kinds {
		stages := reg.Stages(kind)
		var ids []string
		for _, st := range stages {
			if !st.AppliesTo(seriesType) {
				continue
			}
			id := fmt.Sprintf("%s/%s", kind, st.Name)
			label := fmt.Sprintf("%s\npriority %d", st.Name, st.Priority)
			style := "rounded,filled"
			if st.Whole {
				style = "rounded,filled,dashed"
			}
			fmt.Fprintf(&buf, "  %q [label=%q, style=%q];\n", id, label, style)
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "  subgraph \"cluster_%s\" {\n", kind)
		fmt.Fprintf(&buf, "    label=%q;\n", kind.String())
		fmt.Fprintf(&buf, "    style=filled;\n")
		fmt.Fprintf(&buf, "    fillcolor=%q;\n", kindColors[ki%len(kindColors)])
		for _, id := range ids {
			fmt.Fprintf(&buf, "    %q;\n", id)
		}
		buf.WriteString("  }\n")

		for _, id := range ids {
			if prev != "" {
				fmt.Fprintf(&buf, "  %q -> %q;\n", prev, id)
			}
			prev = id
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT plan to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
	return buf.Bytes(), nil
}
