package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcpgov/interceptor/internal/classify"
)

// InvalidRulesError reports a structurally invalid rules document,
// including the offending rule index and field where known.
type InvalidRulesError struct {
	RuleIndex int // -1 when the error is not attributable to one rule
	Field     string
	Err       error
}

func (e *InvalidRulesError) Error() string {
	if e.RuleIndex < 0 {
		return fmt.Sprintf("invalid rules: %v", e.Err)
	}
	return fmt.Sprintf("invalid rules: rule[%d].%s: %v", e.RuleIndex, e.Field, e.Err)
}

func (e *InvalidRulesError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a rules document from path and returns the resulting
// RuleSet. JSON is assumed unless the extension is .yaml or .yml. An
// empty or missing rules list produces an empty RuleSet, which behaves
// as "allow all".
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var doc document
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidRulesError{RuleIndex: -1, Err: fmt.Errorf("parsing YAML: %w", err)}
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidRulesError{RuleIndex: -1, Err: fmt.Errorf("parsing JSON: %w", err)}
		}
	}

	return compile(doc.Rules)
}

// LoadFromDocument validates and compiles an already-parsed rules slice.
// Exposed for callers (and tests) that construct rules in memory rather
// than reading them from disk.
func LoadFromDocument(docRules []Rule) (*RuleSet, error) {
	return compile(docRules)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// compile validates each rule's structural shape, compiles any CEL
// conditions, and returns the resulting RuleSet.
func compile(docRules []Rule) (*RuleSet, error) {
	compiled := make([]Rule, len(docRules))
	conds := make([]*condition, len(docRules))

	for i, r := range docRules {
		if err := validateRule(r); err != nil {
			return nil, &InvalidRulesError{RuleIndex: i, Field: err.field, Err: err.err}
		}

		cond, err := compileCondition(r.Condition)
		if err != nil {
			return nil, &InvalidRulesError{RuleIndex: i, Field: "condition", Err: err}
		}

		compiled[i] = r
		conds[i] = cond
	}

	return &RuleSet{rules: compiled, conditions: conds}, nil
}

type fieldError struct {
	field string
	err   error
}

// validateRule runs struct-tag validation (required fields, oneof
// membership) via go-playground/validator and translates the first
// failure into a field name and cause.
func validateRule(r Rule) *fieldError {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			fe := verrs[0]
			return &fieldError{field: fe.Field(), err: fmt.Errorf("failed %q validation", fe.Tag())}
		}
		return &fieldError{field: "", err: err}
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

// Empty reports whether the rule set has no rules (behaves as allow-all).
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.rules) == 0
}

// Decide evaluates (service, operation) against the rule set in document
// order and returns the first matching rule's decision, or an implicit
// allow when nothing matches. Decide does not evaluate conditions: a rule
// that carries one is skipped as non-matching. It is the pure, two-input
// contract the spec's invariants are stated against.
// Callers that need condition-aware evaluation use Evaluate.
func (rs *RuleSet) Decide(service string, op classify.Operation) Decision {
	if rs == nil {
		return Decision{Permission: Allow, RuleIndex: -1}
	}
	for i, r := range rs.rules {
		if r.Condition != "" {
			// A conditioned rule cannot be resolved without arguments;
			// Decide treats it as non-matching and defers to Evaluate.
			continue
		}
		if r.Service == service && r.matchesOperation(op) {
			return Decision{Permission: r.Permission, Reason: r.Reason, RuleIndex: i}
		}
	}
	return Decision{Permission: Allow, RuleIndex: -1}
}

// Evaluate is Decide extended with per-rule CEL condition matching. It is
// what the interceptor core calls on every tools/call, since conditions
// need the tool name and arguments that Decide's contract excludes.
func (rs *RuleSet) Evaluate(toolName string, res classify.Result, arguments map[string]any) (Decision, error) {
	if rs == nil {
		return Decision{Permission: Allow, RuleIndex: -1}, nil
	}
	for i, r := range rs.rules {
		if r.Service != res.Service || !r.matchesOperation(res.Operation) {
			continue
		}
		ok, err := rs.conditions[i].evaluate(toolName, res, arguments)
		if err != nil {
			return Decision{}, fmt.Errorf("rule[%d]: %w", i, err)
		}
		if ok {
			return Decision{Permission: r.Permission, Reason: r.Reason, RuleIndex: i}, nil
		}
	}
	return Decision{Permission: Allow, RuleIndex: -1}, nil
}

// hasConditions reports whether any rule carries a condition. Used by the
// decision cache to decide whether a (service, operation) pair can be
// memoized without the tool's arguments.
func (rs *RuleSet) hasConditions() bool {
	if rs == nil {
		return false
	}
	for _, r := range rs.rules {
		if r.Condition != "" {
			return true
		}
	}
	return false
}
