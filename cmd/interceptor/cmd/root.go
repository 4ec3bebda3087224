// Package cmd provides the interceptor's CLI entrypoint.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpgov/interceptor/internal/audit"
	"github.com/mcpgov/interceptor/internal/config"
	"github.com/mcpgov/interceptor/internal/interceptor"
	"github.com/mcpgov/interceptor/internal/metrics"
	"github.com/mcpgov/interceptor/internal/rules"
	"github.com/mcpgov/interceptor/internal/supervisor"
	"github.com/mcpgov/interceptor/internal/telemetry"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "interceptor",
	Short: "Transparent governance mediator for MCP servers",
	Long: `interceptor spawns a target MCP server, mediates its stdio traffic with
a client, and enforces a declarative allow/deny rule set over every
tools/call invocation. Denied calls never reach the target; every
decision is audited to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	if err := config.BindFlags(v, rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute runs the root command and exits the process with the
// interceptor's own exit code conventions: 0 clean, 1 generic failure,
// the target's own code on a non-zero target exit, 128+signal when the
// target died from a signal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "interceptor:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	argv, err := supervisor.ParseTarget(cfg.Target)
	if err != nil {
		return fmt.Errorf("parsing --target: %w", err)
	}

	ruleSet, err := rules.Load(cfg.Rules)
	if err != nil {
		return fmt.Errorf("loading --rules: %w", err)
	}
	evaluator := rules.NewEvaluator(ruleSet)

	sink := audit.NewStreamSink(os.Stderr)
	reg := metrics.New()

	var tracerProvider *telemetry.Provider
	if cfg.Trace {
		tracerProvider, err = telemetry.NewStderr(os.Stderr, "mcpgov-interceptor")
		if err != nil {
			return fmt.Errorf("starting tracer: %w", err)
		}
	} else {
		tracerProvider = telemetry.NewDisabled()
	}
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()

	ic := interceptor.New(evaluator, sink, cfg.Service, cfg.Project, logger, reg, tracerProvider.Tracer())

	sup := supervisor.New(argv, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	targetIn, targetOut, err := sup.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting target %v: %w", argv, err)
	}
	defer func() { _ = sup.Close() }()

	stop := sup.RelaySignals(ctx)
	defer stop()

	runErr := ic.Run(ctx, os.Stdin, os.Stdout, targetIn, targetOut)

	waitErr := sup.Wait()
	code := supervisor.ExitCode(waitErr)

	if runErr != nil && code == 0 {
		logger.Error("interceptor exited with error", "error", runErr)
		os.Exit(1)
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
