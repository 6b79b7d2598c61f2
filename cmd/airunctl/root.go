package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SmartChain-HD/AI/internal/api"
	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/internal/infrastructure"
	"github.com/SmartChain-HD/AI/internal/pipeline"
)

var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "airunctl",
	Short: "Validate evidence packages for safety, compliance, and ESG submissions",
	Long: `airunctl matches local files to the checklist slots of a domain and runs
the full validation pipeline over them. Settings are read from config.toml
and AIRUN_* variables like the server, but packages live only in memory.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newService builds a pipeline service from the loaded configuration with
// an in-memory package store and unrestricted local file access.
func newService(ctx context.Context) (*pipeline.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Store.Backend = config.BackendMemory
	cfg.Store.Lock = config.LockLocal
	cfg.Fetch.LocalRoot = ""

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}
	infra.Logger = slog.Default()

	rt, err := api.NewRuntime(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	domain, err := api.NewDomain(cfg, rt)
	if err != nil {
		return nil, err
	}
	return domain.Pipeline, nil
}
