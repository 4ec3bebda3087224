// Package supervisor spawns the target MCP server as a subprocess,
// bridges its stdio, relays termination signals, and surfaces its exit
// code to the interceptor's own process.
package supervisor

import (
	"errors"
	"strings"
)

// ErrEmptyTarget is returned when the target command is empty after
// parsing, leaving nothing to spawn.
var ErrEmptyTarget = errors.New("supervisor: empty target command")

// ParseTarget turns a target specification into an argv vector. It
// accepts either a single whitespace-separated command string (the
// common case: --target "node server.js --port 1234") or a pre-split
// argv, which callers get for free when a config source (e.g. a YAML
// list) already hands over discrete arguments instead of one string.
func ParseTarget(target any) ([]string, error) {
	switch v := target.(type) {
	case []string:
		if len(v) == 0 {
			return nil, ErrEmptyTarget
		}
		return v, nil
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return nil, ErrEmptyTarget
		}
		return fields, nil
	default:
		return nil, errors.New("supervisor: target must be a string or []string")
	}
}
