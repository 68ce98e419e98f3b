package graph

// Role classifies a participant in a sociogram.
type Role string

const (
	RoleMember   Role = "member"
	RoleStar     Role = "star"
	RoleIsolated Role = "isolated"
)

// RoleStyle defines how a role is drawn in each diagram language.
type RoleStyle struct {
	D2Shape      string // D2 shape name
	D2Style      string // D2 style block entries, one per line
	MermaidShape string // Mermaid node shape ([], (()), etc.)
	MermaidClass string // Mermaid classDef body; empty for no class
}

// RoleStyles maps participant roles to their diagram styles.
var RoleStyles = map[Role]RoleStyle{
	// Stars - double circles, gold
	RoleStar: {
		D2Shape:      "circle",
		D2Style:      "fill: \"#ffd700\"\nstroke: \"#b8860b\"\nstroke-width: 3",
		MermaidShape: "((()))",
		MermaidClass: "fill:#ffd700,stroke:#b8860b,stroke-width:3px",
	},

	// Isolated - dashed, grey
	RoleIsolated: {
		D2Shape:      "circle",
		D2Style:      "fill: \"#eeeeee\"\nstroke: \"#999999\"\nstroke-dash: 4",
		MermaidShape: "(())",
		MermaidClass: "fill:#eeeeee,stroke:#999999,stroke-dasharray:4 2",
	},

	RoleMember: {
		D2Shape:      "circle",
		MermaidShape: "(())",
	},
}

// EdgeStyle defines diagram edge syntax for a nomination.
type EdgeStyle struct {
	D2Style      string
	MermaidStyle string
}

var (
	// MutualEdge is drawn once per reciprocated pair.
	MutualEdge = EdgeStyle{D2Style: "<->", MermaidStyle: "<-->"}

	// OneWayEdge is an unreciprocated nomination.
	OneWayEdge = EdgeStyle{D2Style: "->", MermaidStyle: "-->"}
)

// GetRoleStyle returns the style for a role, with fallback to member.
func GetRoleStyle(role Role) RoleStyle {
	if style, ok := RoleStyles[role]; ok {
		return style
	}
	return RoleStyles[RoleMember]
}

// GetEdgeStyle returns the style of an edge.
func GetEdgeStyle(mutual bool) EdgeStyle {
	if mutual {
		return MutualEdge
	}
	return OneWayEdge
}
