// Package rules holds the governance rule set: an ordered, immutable
// policy loaded once at startup and consulted on every tool call.
package rules

import "github.com/mcpgov/interceptor/internal/classify"

// Permission is the outcome of a matched rule.
type Permission string

const (
	Allow Permission = "allow"
	Deny  Permission = "deny"
)

// Rule matches tool calls by service and operation class. The first rule
// in document order whose service and operations set match wins.
type Rule struct {
	Service    string              `json:"service" yaml:"service" validate:"required"`
	Operations []classify.Operation `json:"operations" yaml:"operations" validate:"dive,oneof=read write delete execute admin"`
	Permission Permission          `json:"permission" yaml:"permission" validate:"required,oneof=allow deny"`
	Reason     string              `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Condition is an optional CEL expression further narrowing the
	// match beyond service/operations, evaluated against the tool call's
	// name, service, operation, and arguments. An empty condition always
	// matches. This is an addition to the base rule model; it never
	// changes first-match/default-allow semantics.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty" validate:"omitempty,max=1024"`

	// Comment and Location are accepted and ignored, per the rules-file
	// contract, so operators can annotate a rules document without the
	// loader rejecting it.
	Comment  string `json:"_comment,omitempty" yaml:"_comment,omitempty"`
	Location string `json:"_location,omitempty" yaml:"_location,omitempty"`
}

// matchesOperation reports whether op is in the rule's operations set. An
// empty set matches nothing.
func (r Rule) matchesOperation(op classify.Operation) bool {
	for _, o := range r.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// document is the on-disk shape of a rules file: {"rules": [...]}.
type document struct {
	Rules []Rule `json:"rules" yaml:"rules" validate:"dive"`
}

// RuleSet is the loaded, ordered policy. Immutable once constructed;
// safe for unsynchronized concurrent reads.
type RuleSet struct {
	rules      []Rule
	conditions []*condition
}

// Decision is the outcome of evaluating a rule set against a classified
// tool call.
type Decision struct {
	Permission Permission
	Reason     string
	// RuleIndex is the index of the matching rule in document order, or
	// -1 when no rule matched (implicit default-allow).
	RuleIndex int
}

// Matched reports whether a rule actually matched (as opposed to the
// implicit default-allow).
func (d Decision) Matched() bool {
	return d.RuleIndex >= 0
}
