// Package filter implements C6: the tools/list rewriting and tools/call
// gating middleware. Grounded on the routing-config aggregation structures
// and path-normalization discipline this runtime's filter model is based
// on (RoutingConfig, PathRule, AggregatedPathRule, RuleSources,
// ConfigSource).
package filter

import (
	"encoding/json"
	"fmt"
)

// TagFilterValue unmarshals either a single string or an array of strings
// from a routing config's tag-filters map, matching the config format's
// untagged single/multiple value shape.
type TagFilterValue []string

func (v *TagFilterValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = []string{single}
		return nil
	}
	var multiple []string
	if err := json.Unmarshal(data, &multiple); err != nil {
		return fmt.Errorf("filter: tag filter value is neither a string nor an array of strings: %w", err)
	}
	*v = multiple
	return nil
}

// PathRule is one entry in a RoutingConfig's path_rules map.
type PathRule struct {
	Whitelist  []string                  `json:"whitelist,omitempty"`
	Blacklist  []string                  `json:"blacklist,omitempty"`
	TagFilters map[string]TagFilterValue `json:"tag-filters,omitempty"`

	// Expression extends the base filtering contract: an optional CEL
	// boolean expression evaluated (in addition to
	// whitelist/blacklist/tag-filter checks) against a `tool` variable
	// exposing name/component_id/tags. A tool must pass both the base
	// checks and, if present, this expression.
	Expression string `json:"expression,omitempty"`
}

// RoutingConfig is the routing://config resource shape: a version stamp,
// per-path rules, and config-wide default tag filters.
type RoutingConfig struct {
	Version           string                    `json:"version"`
	PathRules         map[string]PathRule       `json:"path-rules"`
	GlobalTagFilters  map[string]TagFilterValue `json:"tag-filters,omitempty"`
}

// ToolMetadata is parsed from a Tool's options.meta JSON blob.
type ToolMetadata struct {
	ComponentID string
	Tags        map[string]string
}

// RuleSources tracks which config URI contributed each component of an
// AggregatedPathRule, for conflict reporting and diagnostics.
type RuleSources struct {
	WhitelistFrom  []string `json:"whitelist_from"`
	BlacklistFrom  []string `json:"blacklist_from"`
	TagFiltersFrom []string `json:"tag_filters_from"`
}

// AggregatedPathRule is the result of concatenating every config's
// whitelist/blacklist and union-ing tag-filter value sets for one path.
type AggregatedPathRule struct {
	Whitelist  []string
	Blacklist  []string
	TagFilters map[string][]string
	Expression string
	Sources    RuleSources
}

// ConfigSource identifies one RoutingConfig contribution by its resource
// URI and version stamp.
type ConfigSource struct {
	URI     string
	Version string
}
