package rules

import (
	"testing"

	"github.com/mcpgov/interceptor/internal/classify"
)

func TestEvaluate_ConditionNarrowsMatch(t *testing.T) {
	rs, err := LoadFromDocument([]Rule{
		{
			Service:    "github",
			Operations: []classify.Operation{classify.OpDelete},
			Permission: Deny,
			Reason:     "protected repo",
			Condition:  `arguments.repo_name == "prod"`,
		},
	})
	if err != nil {
		t.Fatalf("LoadFromDocument: %v", err)
	}

	res := classify.Result{Service: "github", Operation: classify.OpDelete}

	denied, err := rs.Evaluate("github_delete_repo", res, map[string]any{"repo_name": "prod"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if denied.Permission != Deny {
		t.Errorf("Evaluate(repo_name=prod) = %+v, want deny", denied)
	}

	allowed, err := rs.Evaluate("github_delete_repo", res, map[string]any{"repo_name": "scratch"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if allowed.Matched() {
		t.Errorf("Evaluate(repo_name=scratch) = %+v, want unmatched allow", allowed)
	}
}

func TestEvaluate_NoConditionAlwaysMatches(t *testing.T) {
	rs, err := LoadFromDocument([]Rule{
		{Service: "github", Operations: []classify.Operation{classify.OpDelete}, Permission: Deny},
	})
	if err != nil {
		t.Fatalf("LoadFromDocument: %v", err)
	}
	res := classify.Result{Service: "github", Operation: classify.OpDelete}
	d, err := rs.Evaluate("github_delete_repo", res, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Permission != Deny {
		t.Errorf("Evaluate = %+v, want deny", d)
	}
}

func TestCompileCondition_RejectsInvalidExpression(t *testing.T) {
	_, err := LoadFromDocument([]Rule{
		{Service: "x", Operations: []classify.Operation{classify.OpRead}, Permission: Allow, Condition: "arguments.("},
	})
	if err == nil {
		t.Fatal("LoadFromDocument: expected compile error for malformed condition")
	}
}

func TestCompileCondition_RejectsExcessiveNesting(t *testing.T) {
	deep := ""
	for i := 0; i < maxConditionNesting+1; i++ {
		deep += "("
	}
	deep += "true"
	for i := 0; i < maxConditionNesting+1; i++ {
		deep += ")"
	}
	_, err := compileCondition(deep)
	if err == nil {
		t.Fatal("compileCondition: expected nesting error")
	}
}
