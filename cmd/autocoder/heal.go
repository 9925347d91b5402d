package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/autocoder-sub000/pkg/heal"
	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

func newHealCmd(opts *rootOptions) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Create stub files for unresolved module references in diagnostic output",
		Long: `Scans linter output for unresolved-module diagnostics, creates a stub for
each missing module, and asks the generation backend to populate it.
Existing files are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHeal(cmd, opts, inputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "diagnostic text file, or - for stdin")
	return cmd
}

func runHeal(cmd *cobra.Command, opts *rootOptions, inputPath string) error {
	cfg, workDir, err := opts.loadConfig()
	if err != nil {
		return err
	}

	diagnostics, err := readInput(cmd, inputPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logErr := logging.NewLogger("heal")
	if logErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: session log unavailable: %v\n", logErr)
	}
	defer logger.Close()

	reporter := progress.NewWriterReporter(cmd.OutOrStdout(), logger)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	store := workspace.NewStore()
	pipe := pipeline.New(store, verify.NewRunner(workDir, logger), logger, reporter)

	healer := heal.NewHealer(heal.Config{
		Store:           store,
		Provider:        provider,
		Pipeline:        pipe,
		Logger:          logger,
		Reporter:        reporter,
		Project:         cfg.Project,
		WorkDir:         workDir,
		SourceExtension: cfg.Heal.SourceExtension,
	})

	created, err := healer.Heal(ctx, diagnostics)
	if err != nil {
		return err
	}

	reporter.Statusf("healed %d missing module(s)", len(created))
	return nil
}

func readInput(cmd *cobra.Command, inputPath string) (string, error) {
	if inputPath == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read diagnostics from %s: %w", inputPath, err)
	}
	return string(data), nil
}
