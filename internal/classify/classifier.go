// Package classify maps MCP tool names to a (service, operation) pair used
// by the rule engine. Classification is pure and has no dependency on the
// rest of the interceptor.
package classify

import (
	"errors"
	"strings"
)

// ErrMalformedToolName is returned when the tool name is empty.
var ErrMalformedToolName = errors.New("malformed tool name")

// Result is the outcome of classifying a tool name.
type Result struct {
	Service   string
	Operation Operation
}

// Classify splits a tool name into a service and an operation class.
//
// The name is lowercased, then split on the first "_" or "-": the prefix
// becomes the service for rule lookup. Every token of the name, including
// that service prefix, is then scanned for keyword matches — the prefix
// is excluded only from the service/remainder split, not from keyword
// matching, so a name like "admin_delete_user" matches both "admin" and
// "delete". The highest-priority class among all matched tokens wins
// (admin > delete > execute > write > read). A name with no tokens that
// match anything resolves to the default operation (write).
func Classify(toolName string) (Result, error) {
	name := strings.ToLower(toolName)
	if name == "" {
		return Result{}, ErrMalformedToolName
	}

	op := defaultOperation
	if matched, ok := classifyTokens(name); ok {
		op = matched
	}

	return Result{Service: serviceOf(name), Operation: op}, nil
}

// serviceOf returns the prefix of name up to the first "_" or "-", used as
// the service key for rule lookup. If no separator is present, the whole
// name is the service.
func serviceOf(name string) string {
	idx := strings.IndexAny(name, "_-")
	if idx < 0 {
		return name
	}
	return name[:idx]
}

// classifyTokens tokenizes name on "_"/"-" and returns the highest-priority
// operation class among all matched tokens, including the service token
// itself. ok is false if no token matched any keyword.
func classifyTokens(name string) (op Operation, ok bool) {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var seen []Operation
	for _, tok := range tokens {
		if matches := classesOf(tok); matches != nil {
			seen = append(seen, matches...)
		}
	}
	if len(seen) == 0 {
		return "", false
	}
	return highestPriority(seen), true
}
