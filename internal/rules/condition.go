package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/mcpgov/interceptor/internal/classify"
)

// maxConditionNesting bounds parenthesis/bracket nesting in a rule's
// condition expression, mirroring the hardening the teacher applies to
// its own CEL-backed policy engine.
const maxConditionNesting = 50

// conditionEvalTimeout bounds a single condition evaluation so a
// pathological expression cannot stall the interceptor's hot path.
const conditionEvalTimeout = 50 * time.Millisecond

// conditionEnv is the CEL environment shared by every compiled condition.
// Built once; cel.Env is safe for concurrent Compile/Program calls.
var conditionEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("tool_name", cel.StringType),
		cel.Variable("service", cel.StringType),
		cel.Variable("operation", cel.StringType),
		cel.Variable("arguments", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		panic(fmt.Sprintf("rules: building condition environment: %v", err))
	}
	conditionEnv = env
}

// condition is a compiled rule condition.
type condition struct {
	expr    string
	program cel.Program
}

// compileCondition validates and compiles a rule's condition expression.
// An empty expression is not compiled and always matches.
func compileCondition(expr string) (*condition, error) {
	if expr == "" {
		return nil, nil
	}
	if err := validateNesting(expr); err != nil {
		return nil, err
	}

	ast, issues := conditionEnv.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling condition %q: %w", expr, issues.Err())
	}
	// ContextEval only observes conditionEvalTimeout when the program
	// checks for interrupts.
	prg, err := conditionEnv.Program(ast, cel.EvalOptions(cel.OptOptimize), cel.InterruptCheckFrequency(100))
	if err != nil {
		return nil, fmt.Errorf("building condition program %q: %w", expr, err)
	}
	return &condition{expr: expr, program: prg}, nil
}

// validateNesting rejects conditions with excessive bracket nesting.
func validateNesting(expr string) error {
	depth, max := 0, 0
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > max {
				max = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if max > maxConditionNesting {
		return fmt.Errorf("condition nesting too deep: %d levels (max %d)", max, maxConditionNesting)
	}
	return nil
}

// evaluate runs the compiled condition against a classified tool call.
// A nil condition always matches.
func (c *condition) evaluate(toolName string, res classify.Result, arguments map[string]any) (bool, error) {
	if c == nil {
		return true, nil
	}
	if arguments == nil {
		arguments = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), conditionEvalTimeout)
	defer cancel()

	out, _, err := c.program.ContextEval(ctx, map[string]any{
		"tool_name": toolName,
		"service":   res.Service,
		"operation": string(res.Operation),
		"arguments": arguments,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating condition %q: %w", c.expr, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("condition did not evaluate to a boolean")
	}
	return b, nil
}
