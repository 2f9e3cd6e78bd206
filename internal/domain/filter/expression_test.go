package filter

import "testing"

func TestExpressionAllowsTrustedComponentOverride(t *testing.T) {
	env, err := ToolEnv()
	if err != nil {
		t.Fatalf("ToolEnv() error = %v", err)
	}
	prg, err := CompileExpression(env, `tool.tags["risk"] != "high" || tool.component_id == "trusted-id"`)
	if err != nil {
		t.Fatalf("CompileExpression() error = %v", err)
	}

	ok, err := EvaluateExpression(prg, "danger", "trusted-id", map[string]string{"risk": "high"})
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if !ok {
		t.Error("expected trusted component to override high risk")
	}

	ok, err = EvaluateExpression(prg, "danger", "untrusted-id", map[string]string{"risk": "high"})
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if ok {
		t.Error("expected untrusted high-risk tool to be rejected")
	}
}

func TestCompileExpressionRejectsOverlyNestedInput(t *testing.T) {
	env, _ := ToolEnv()
	nested := ""
	for i := 0; i < maxNestingDepth+5; i++ {
		nested += "("
	}
	nested += "true"
	for i := 0; i < maxNestingDepth+5; i++ {
		nested += ")"
	}
	if _, err := CompileExpression(env, nested); err == nil {
		t.Error("expected a nesting-depth error")
	}
}

func TestCompileExpressionRejectsOverlyLongInput(t *testing.T) {
	env, _ := ToolEnv()
	long := make([]byte, maxExpressionLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := CompileExpression(env, string(long)); err == nil {
		t.Error("expected a length error")
	}
}
