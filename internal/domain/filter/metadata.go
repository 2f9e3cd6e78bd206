package filter

import (
	"encoding/json"

	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

// ParseToolMetadata extracts a ToolMetadata from a Tool's Meta field
// ("_meta" on the wire). A missing or malformed Meta yields a zero-value
// ToolMetadata rather than an error: tools with no metadata simply never
// match a whitelist/tag-filter rule keyed on component_id or tags.
func ParseToolMetadata(tool mcp.Tool) ToolMetadata {
	meta := ToolMetadata{Tags: map[string]string{}}
	if len(tool.Meta) == 0 {
		return meta
	}
	var parsed struct {
		ComponentID string            `json:"component_id"`
		Tags        map[string]string `json:"tags"`
	}
	if err := json.Unmarshal(tool.Meta, &parsed); err != nil {
		return meta
	}
	meta.ComponentID = parsed.ComponentID
	if parsed.Tags != nil {
		meta.Tags = parsed.Tags
	}
	return meta
}

// PassesWhitelist reports whether tool matches an empty (no restriction)
// or non-empty whitelist, by component ID or tool name.
func PassesWhitelist(toolName string, metadata ToolMetadata, whitelist []string) bool {
	if len(whitelist) == 0 {
		return true
	}
	if metadata.ComponentID != "" && contains(whitelist, metadata.ComponentID) {
		return true
	}
	return contains(whitelist, toolName)
}

// IsBlacklisted reports whether toolName appears in blacklist.
func IsBlacklisted(toolName string, blacklist []string) bool {
	return contains(blacklist, toolName)
}

// MatchesTagFilters reports whether metadata satisfies every active tag
// filter. A tool must match ALL filters; a missing tag value disqualifies
// it under that filter.
func MatchesTagFilters(metadata ToolMetadata, active map[string][]string) bool {
	for tag, allowed := range active {
		value, ok := metadata.Tags[tag]
		if !ok || !contains(allowed, value) {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
