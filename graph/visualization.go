package graph

import (
	"fmt"
	"slices"
	"strings"
)

// Diagram formats understood by Exporter.Draw.
const (
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatASCII   = "ascii"
)

// Exporter renders a graph's structure for documentation and debugging.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// Draw renders the graph in format.
func (ge *Exporter[S]) Draw(format string) (string, error) {
	switch format {
	case "", FormatMermaid:
		return ge.DrawMermaid(), nil
	case FormatDOT:
		return ge.DrawDOT(), nil
	case FormatASCII:
		return ge.DrawASCII(), nil
	default:
		return "", fmt.Errorf("unknown diagram format %q", format)
	}
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	g := ge.graph
	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", g.entryPoint, g.entryPoint)
		fmt.Fprintf(&sb, "    START --> %s\n", g.entryPoint)
	}

	for _, name := range g.Nodes() {
		if name != g.entryPoint {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
		}
	}

	if ge.hasEnd() {
		sb.WriteString("    END([\"END\"])\n")
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
	}

	if g.entryPoint != "" {
		sb.WriteString("    style START fill:#90EE90\n")
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", g.entryPoint)
	}
	if ge.hasEnd() {
		sb.WriteString("    style END fill:#FFB6C1\n")
	}
	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph. Node
// descriptions become tooltips.
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder
	g := ge.graph

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	if g.entryPoint != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		fmt.Fprintf(&sb, "    START -> %s;\n", g.entryPoint)
		fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", g.entryPoint)
	}
	if ge.hasEnd() {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}
	for _, name := range g.Nodes() {
		if desc := g.nodes[name].Description; desc != "" {
			fmt.Fprintf(&sb, "    %s [tooltip=%q];\n", name, desc)
		}
	}
	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s -> %s;\n", edge.From, edge.To)
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree of the execution flow. A node reached a
// second time through fan-in is printed once more as "(joined)"; a node that
// leads back to one of its ancestors is printed as "(cycle)".
func (ge *Exporter[S]) DrawASCII() string {
	if ge.graph.entryPoint == "" {
		return "No entry point set\n"
	}

	var sb strings.Builder
	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")
	ge.drawASCIINode(ge.graph.entryPoint, "│   ", true, map[string]bool{}, map[string]bool{}, &sb)
	return sb.String()
}

func (ge *Exporter[S]) drawASCIINode(name, prefix string, isLast bool, drawn, path map[string]bool, sb *strings.Builder) {
	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}

	switch {
	case path[name]:
		fmt.Fprintf(sb, "%s%s %s (cycle)\n", prefix, connector, name)
		return
	case drawn[name]:
		fmt.Fprintf(sb, "%s%s %s (joined)\n", prefix, connector, name)
		return
	}

	drawn[name] = true
	fmt.Fprintf(sb, "%s%s %s\n", prefix, connector, name)
	if name == END {
		return
	}

	path[name] = true
	defer delete(path, name)

	var targets []string
	for _, edge := range ge.graph.edges {
		if edge.From == name && !slices.Contains(targets, edge.To) {
			targets = append(targets, edge.To)
		}
	}
	slices.Sort(targets)

	for i, target := range targets {
		ge.drawASCIINode(target, nextPrefix, i == len(targets)-1, drawn, path, sb)
	}
}

func (ge *Exporter[S]) hasEnd() bool {
	for _, edge := range ge.graph.edges {
		if edge.To == END {
			return true
		}
	}
	return false
}
