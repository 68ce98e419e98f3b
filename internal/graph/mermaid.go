package graph

import (
	"fmt"
	"strings"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	Direction string // Layout direction: "TD" (top-down) or "LR" (left-right)
	Title     string // Optional diagram title
}

// DefaultMermaidOptions returns the default Mermaid options.
func DefaultMermaidOptions() *MermaidOptions {
	return &MermaidOptions{
		Direction: "LR",
	}
}

// Mermaid renders the sociogram as a Mermaid flowchart.
func (s Sociogram) Mermaid(opts *MermaidOptions) string {
	if opts == nil {
		opts = DefaultMermaidOptions()
	}
	direction := opts.Direction
	if direction != "TD" && direction != "LR" {
		direction = "LR"
	}

	var sb strings.Builder

	if opts.Title != "" {
		fmt.Fprintf(&sb, "---\ntitle: \"%s\"\n---\n", escapeMermaidString(opts.Title))
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	byRole := make(map[Role][]string)
	for _, n := range s.Nodes {
		id := nodeID(n.ID)
		fmt.Fprintf(&sb, "    %s\n", generateMermaidNode(id, n.Name, n.Role))
		byRole[n.Role] = append(byRole[n.Role], id)
	}

	for _, e := range s.Edges {
		style := GetEdgeStyle(e.Mutual)
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.From), style.MermaidStyle, nodeID(e.To))
	}

	for _, role := range []Role{RoleStar, RoleIsolated} {
		if len(byRole[role]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    classDef %s %s\n", role, GetRoleStyle(role).MermaidClass)
		fmt.Fprintf(&sb, "    class %s %s\n", strings.Join(byRole[role], ","), role)
	}

	return sb.String()
}

// generateMermaidNode creates a Mermaid node declaration with the shape of
// the role.
func generateMermaidNode(id, name string, role Role) string {
	escapedName := escapeMermaidString(name)

	switch GetRoleStyle(role).MermaidShape {
	case "((()))":
		return fmt.Sprintf("%s(((\"%s\")))", id, escapedName)
	case "(())":
		return fmt.Sprintf("%s((\"%s\"))", id, escapedName)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, escapedName)
	}
}

// escapeMermaidString escapes special characters in Mermaid string content.
func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
