package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// MCPGOV_TARGET, MCPGOV_RULES, MCPGOV_SERVICE, MCPGOV_PROJECT, MCPGOV_TRACE.
const envPrefix = "MCPGOV"

// BindFlags registers --target/--rules/--service/--project/--trace on
// cmd and wires viper to prefer, in order: the flag if set, the
// MCPGOV_-prefixed environment variable, then the flag default.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("target", "", "command to spawn the target MCP server, e.g. \"node server.js\"")
	flags.String("rules", "", "path to the rules document (JSON or YAML)")
	flags.String("service", "", "override the classifier's extracted service name for every tool call")
	flags.String("project", "", "project identifier stamped onto every audit record")
	flags.Bool("trace", false, "export spans to stderr via OpenTelemetry")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"target", "rules", "service", "project", "trace"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("config: binding --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the bound flags/env vars into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Target:  v.GetString("target"),
		Rules:   v.GetString("rules"),
		Service: v.GetString("service"),
		Project: v.GetString("project"),
		Trace:   v.GetBool("trace"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
