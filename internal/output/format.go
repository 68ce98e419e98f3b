// Package output renders smx documents as YAML, JSON, or text tables.
package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default self-documenting YAML output
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"

	// FormatTable renders fixed-width terminal tables
	FormatTable Format = "table"

	// FormatMarkdown renders GitHub-flavoured Markdown tables
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json", "table", "markdown" (case-insensitive)
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml, json, table, or markdown)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsTabular reports whether f renders tables rather than a document.
func (f Format) IsTabular() bool {
	return f == FormatTable || f == FormatMarkdown
}
