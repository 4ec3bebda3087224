package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBoundCommand(t *testing.T) (*cobra.Command, *viper.Viper) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	v := viper.New()
	if err := BindFlags(v, cmd); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	return cmd, v
}

func TestLoad_FromFlags(t *testing.T) {
	cmd, v := newBoundCommand(t)
	if err := cmd.Flags().Set("target", "node server.js"); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if err := cmd.Flags().Set("rules", "rules.json"); err != nil {
		t.Fatalf("set rules: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "node server.js" || cfg.Rules != "rules.json" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MCPGOV_TARGET", "python server.py")
	t.Setenv("MCPGOV_RULES", "/etc/mcpgov/rules.yaml")
	t.Setenv("MCPGOV_SERVICE", "filesystem")

	_, v := newBoundCommand(t)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "python server.py" || cfg.Rules != "/etc/mcpgov/rules.yaml" || cfg.Service != "filesystem" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingTargetFailsValidation(t *testing.T) {
	cmd, v := newBoundCommand(t)
	if err := cmd.Flags().Set("rules", "rules.json"); err != nil {
		t.Fatalf("set rules: %v", err)
	}

	if _, err := Load(v); err == nil {
		t.Fatal("Load: expected error for missing target")
	}
}

func TestConfig_ValidateRequiresTargetAndRules(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatal("Validate: expected error for empty Config")
	}
	if err := (Config{Target: "x", Rules: "y"}).Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}
