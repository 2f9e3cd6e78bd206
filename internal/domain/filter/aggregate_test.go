package filter

import (
	"reflect"
	"sort"
	"testing"
)

func TestAggregateConcatenatesWhitelists(t *testing.T) {
	configs := map[string]RoutingConfig{
		"routing://a": {PathRules: map[string]PathRule{"/mcp": {Whitelist: []string{"echo"}}}},
		"routing://b": {PathRules: map[string]PathRule{"/mcp": {Whitelist: []string{"add"}}}},
	}
	agg := Aggregate(configs)
	rule := agg["/mcp"]
	sort.Strings(rule.Whitelist)
	if !reflect.DeepEqual(rule.Whitelist, []string{"add", "echo"}) {
		t.Errorf("Whitelist = %v", rule.Whitelist)
	}
	if len(rule.Sources.WhitelistFrom) != 2 {
		t.Errorf("Sources.WhitelistFrom = %v, want 2 entries", rule.Sources.WhitelistFrom)
	}
}

func TestAggregateUnionsTagFilterValues(t *testing.T) {
	configs := map[string]RoutingConfig{
		"routing://a": {PathRules: map[string]PathRule{"/mcp": {TagFilters: map[string]TagFilterValue{"env": {"prod"}}}}},
		"routing://b": {PathRules: map[string]PathRule{"/mcp": {TagFilters: map[string]TagFilterValue{"env": {"staging", "prod"}}}}},
	}
	agg := Aggregate(configs)
	values := agg["/mcp"].TagFilters["env"]
	sort.Strings(values)
	if !reflect.DeepEqual(values, []string{"prod", "staging"}) {
		t.Errorf("TagFilters[env] = %v, want deduplicated union", values)
	}
}

func TestAggregateDistinctPathsDoNotMix(t *testing.T) {
	configs := map[string]RoutingConfig{
		"routing://a": {PathRules: map[string]PathRule{
			"/mcp":            {Whitelist: []string{"echo"}},
			"/mcp/calculator": {Whitelist: []string{"add"}},
		}},
	}
	agg := Aggregate(configs)
	if !reflect.DeepEqual(agg["/mcp"].Whitelist, []string{"echo"}) {
		t.Errorf("/mcp whitelist leaked: %v", agg["/mcp"].Whitelist)
	}
	if !reflect.DeepEqual(agg["/mcp/calculator"].Whitelist, []string{"add"}) {
		t.Errorf("/mcp/calculator whitelist leaked: %v", agg["/mcp/calculator"].Whitelist)
	}
}

func TestAggregateAbsentPathHasNoRule(t *testing.T) {
	agg := Aggregate(map[string]RoutingConfig{"routing://a": {PathRules: map[string]PathRule{"/mcp": {}}}})
	if _, ok := agg["/other"]; ok {
		t.Error("expected no rule for an unreferenced path")
	}
}
