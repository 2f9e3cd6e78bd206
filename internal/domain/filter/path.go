package filter

import "strings"

// defaultPath is used whenever the message context carries no HTTP path
// (e.g. the stdio transport, which has no concept of an HTTP route).
const defaultPath = "/mcp"

// NormalizePath removes duplicate and trailing slashes and guarantees a
// single leading slash, so "//mcp", "/mcp//", and "/mcp/" all normalize to
// the same path rather than silently bypassing a rule keyed on "/mcp".
func NormalizePath(raw string) string {
	segments := strings.Split(raw, "/")
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return defaultPath
	}
	return "/" + strings.Join(kept, "/")
}
