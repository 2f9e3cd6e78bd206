package filter

import (
	"encoding/json"
	"testing"

	"github.com/Sentinel-Gate/Sentinelgate/pkg/mcp"
)

func TestParseToolMetadata(t *testing.T) {
	meta, _ := json.Marshal(map[string]interface{}{
		"component_id": "trusted-id",
		"tags":         map[string]string{"risk": "low"},
	})
	tool := mcp.Tool{Name: "echo", Meta: meta}
	got := ParseToolMetadata(tool)
	if got.ComponentID != "trusted-id" || got.Tags["risk"] != "low" {
		t.Errorf("ParseToolMetadata = %+v", got)
	}
}

func TestParseToolMetadataMissingMeta(t *testing.T) {
	got := ParseToolMetadata(mcp.Tool{Name: "echo"})
	if got.ComponentID != "" || len(got.Tags) != 0 {
		t.Errorf("expected zero-value metadata, got %+v", got)
	}
}

func TestPassesWhitelistEmptyAllowsAll(t *testing.T) {
	if !PassesWhitelist("anything", ToolMetadata{}, nil) {
		t.Error("empty whitelist should allow any tool")
	}
}

func TestPassesWhitelistByNameOrComponent(t *testing.T) {
	if !PassesWhitelist("echo", ToolMetadata{}, []string{"echo"}) {
		t.Error("expected name match to pass")
	}
	if !PassesWhitelist("anything", ToolMetadata{ComponentID: "trusted-id"}, []string{"trusted-id"}) {
		t.Error("expected component_id match to pass")
	}
	if PassesWhitelist("add", ToolMetadata{}, []string{"echo"}) {
		t.Error("unlisted tool should not pass")
	}
}

func TestMatchesTagFiltersRequiresAll(t *testing.T) {
	meta := ToolMetadata{Tags: map[string]string{"env": "prod"}}
	if !MatchesTagFilters(meta, map[string][]string{"env": {"prod", "staging"}}) {
		t.Error("expected env=prod to match")
	}
	if MatchesTagFilters(meta, map[string][]string{"env": {"staging"}}) {
		t.Error("expected env=prod not to match staging-only filter")
	}
	if MatchesTagFilters(meta, map[string][]string{"missing-tag": {"x"}}) {
		t.Error("a missing tag should disqualify the tool")
	}
}
