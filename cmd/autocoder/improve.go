package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/autocoder-sub000/pkg/improve"
	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/memory"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

func newImproveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "improve",
		Short: "Run one self-improvement cycle over the configured candidate files",
		Long: `Iterates the candidate list in order, requests a replacement body for each
file from the generation backend, and commits at most one change that passes
the configured verification command. Everything else is rolled back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImprove(cmd, opts)
		},
	}
}

func runImprove(cmd *cobra.Command, opts *rootOptions) error {
	cfg, workDir, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logErr := logging.NewLogger("improve")
	if logErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: session log unavailable: %v\n", logErr)
	}
	defer logger.Close()

	reporter := progress.NewWriterReporter(cmd.OutOrStdout(), logger)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	var saver memory.Saver
	if store, memErr := memory.NewFileStore(cfg.Memory.Dir, logger); memErr != nil {
		logger.Warnf("memory store unavailable: %v", memErr)
	} else {
		saver = store
	}

	store := workspace.NewStore()
	runner := verify.NewRunner(workDir, logger)
	pipe := pipeline.New(store, runner, logger, reporter)

	candidates, err := improve.Candidates(workDir, cfg.Improve.CandidatePatterns)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		reporter.Statusf("no candidate files match %v", cfg.Improve.CandidatePatterns)
		return nil
	}

	cycle := improve.NewCycle(improve.Config{
		Provider:      provider,
		Pipeline:      pipe,
		Store:         store,
		Saver:         saver,
		Logger:        logger,
		Reporter:      reporter,
		Project:       cfg.Project,
		WorkDir:       workDir,
		VerifyCommand: cfg.Verify.Command,
	})

	report, err := cycle.Run(ctx, candidates)
	if err != nil {
		if report != nil && report.Outcome == improve.OutcomeAborted {
			return fmt.Errorf("cycle aborted, working tree integrity not guaranteed: %w", err)
		}
		return err
	}

	reporter.Statusf("cycle finished: %s", report.Outcome)
	return nil
}
