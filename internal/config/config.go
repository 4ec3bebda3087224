// Package config binds the interceptor's command-line flags and
// MCPGOV_-prefixed environment variables into a validated settings
// struct.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds everything the interceptor needs to start: what to spawn,
// what rules to enforce, and the optional overrides and diagnostics
// knobs layered on top.
type Config struct {
	// Target is the command to spawn, whitespace-split into argv by
	// supervisor.ParseTarget. Required.
	Target string `mapstructure:"target" validate:"required"`
	// Rules is a path to a JSON or YAML rules document. Required.
	Rules string `mapstructure:"rules" validate:"required"`
	// Service overrides the classifier's extracted service name for
	// every tool call, when set.
	Service string `mapstructure:"service"`
	// Project is stamped onto every audit record, when set.
	Project string `mapstructure:"project"`
	// Trace enables stderr span export via OpenTelemetry.
	Trace bool `mapstructure:"trace"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and returns a descriptive error
// naming the first offending field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if asValidationErrors(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s is required", fe.Field())
		}
		return fmt.Errorf("config: %w", err)
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
