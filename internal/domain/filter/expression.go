package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"
)

// Expression limits mirror internal/adapter/outbound/cel's policy
// evaluator discipline (compile-time length/nesting bounds, a runtime
// cost budget, and an evaluation timeout), adapted from a generic policy
// environment to one exposing a single `tool` map variable.
const (
	maxExpressionLength = 1024
	maxCostBudget       = 100_000
	maxNestingDepth      = 50
	evalTimeout          = 5 * time.Second
)

// ToolEnv builds the CEL environment PathRule.Expression is evaluated
// against: a single `tool` variable, a map with "name" (string),
// "component_id" (string), and "tags" (map<string,string>) entries.
func ToolEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("tool", cel.MapType(cel.StringType, cel.DynType)),
	)
}

// CompileExpression validates and compiles a PathRule.Expression.
func CompileExpression(env *cel.Env, expr string) (cel.Program, error) {
	if len(expr) > maxExpressionLength {
		return nil, fmt.Errorf("filter: expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	if err := validateNesting(expr); err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: expression compile failed: %w", issues.Err())
	}
	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize), cel.CostLimit(maxCostBudget))
	if err != nil {
		return nil, fmt.Errorf("filter: expression program failed: %w", err)
	}
	return prg, nil
}

func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("filter: expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}

// EvaluateExpression runs prg against a tool's name/component_id/tags and
// reports whether it evaluated to true.
func EvaluateExpression(prg cel.Program, toolName, componentID string, tags map[string]string) (bool, error) {
	tagsAny := make(map[string]interface{}, len(tags))
	for k, v := range tags {
		tagsAny[k] = v
	}
	activation := map[string]interface{}{
		"tool": map[string]interface{}{
			"name":         toolName,
			"component_id": componentID,
			"tags":         tagsAny,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()
	result, _, err := prg.ContextEval(ctx, activation)
	if err != nil {
		return false, fmt.Errorf("filter: expression evaluation failed: %w", err)
	}
	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter: expression did not return a boolean, got %T", result.Value())
	}
	return b, nil
}
