package filter

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"//mcp":                       "/mcp",
		"/mcp//calculator":            "/mcp/calculator",
		"///mcp///calculator///":      "/mcp/calculator",
		"/mcp/":                       "/mcp",
		"/mcp/calculator/":            "/mcp/calculator",
		"/mcp":                        "/mcp",
		"/mcp/calculator":             "/mcp/calculator",
		"/mcp/calculator/advanced":    "/mcp/calculator/advanced",
		"":                            "/mcp",
		"/":                           "/mcp",
		"//":                          "/mcp",
		"/mcp/calculator//":           "/mcp/calculator",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizePathPreventsBypass(t *testing.T) {
	variants := []string{"/mcp/calculator", "//mcp/calculator", "/mcp//calculator", "/mcp/calculator//"}
	want := "/mcp/calculator"
	for _, v := range variants {
		if got := NormalizePath(v); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q (bypass)", v, got, want)
		}
	}
}
