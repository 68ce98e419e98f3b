package graph

import (
	"fmt"
	"strings"
)

// D2Options configures D2 diagram generation.
type D2Options struct {
	Direction string // Layout direction: "right" or "down"
	Title     string // Optional diagram title
}

// DefaultD2Options returns the default D2 options.
func DefaultD2Options() *D2Options {
	return &D2Options{
		Direction: "right",
	}
}

// D2 renders the sociogram as a D2 diagram.
func (s Sociogram) D2(opts *D2Options) string {
	if opts == nil {
		opts = DefaultD2Options()
	}
	direction := opts.Direction
	if direction != "right" && direction != "down" {
		direction = "right"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "direction: %s\n", direction)
	if opts.Title != "" {
		fmt.Fprintf(&sb, "title: {\n  label: %s\n  near: top-center\n  shape: text\n}\n", quoteD2(opts.Title))
	}
	sb.WriteString("\n")

	sb.WriteString("# Participants\n")
	for _, n := range s.Nodes {
		sb.WriteString(generateD2Node(nodeID(n.ID), n.Name, n.Role))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("# Nominations\n")
	for _, e := range s.Edges {
		style := GetEdgeStyle(e.Mutual)
		fmt.Fprintf(&sb, "%s %s %s\n", nodeID(e.From), style.D2Style, nodeID(e.To))
	}

	return sb.String()
}

// generateD2Node generates a D2 node definition.
func generateD2Node(id, name string, role Role) string {
	style := GetRoleStyle(role)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: {\n", id)
	fmt.Fprintf(&sb, "  label: %s\n", quoteD2(name))
	fmt.Fprintf(&sb, "  shape: %s\n", style.D2Shape)
	if style.D2Style != "" {
		sb.WriteString("  style: {\n")
		for _, line := range strings.Split(style.D2Style, "\n") {
			fmt.Fprintf(&sb, "    %s\n", line)
		}
		sb.WriteString("  }\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// quoteD2 wraps s in double quotes, escaping backslashes and quotes.
func quoteD2(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}
