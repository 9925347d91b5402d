package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/parser"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

// multiFilePromptTemplate requests the section grammar: one heading per file,
// content fenced.
const multiFilePromptTemplate = `Implement the following request for the project %q. Respond with one section
per file, each starting with a heading line "# File: relative/path" followed
by the complete file content in a fenced code block. No other prose.

Request: %s`

// planPromptTemplate requests the plan grammar: exactly one new file plus its
// location, as a JSON object.
const planPromptTemplate = `Implement the following request for the project %q as exactly one new file.
Respond with a single JSON object with two fields: "filePath" (the relative
path for the new file) and "code" (its complete content). No other prose.

Request: %s`

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var planMode bool

	cmd := &cobra.Command{
		Use:   "generate <request>",
		Short: "Generate files from a request and write them without a verification gate",
		Long: `Sends the request to the generation backend and writes every proposed file
into the workspace. With --plan, exactly one new file plus its location is
requested and a missing path or content is an error instead of a no-op.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, strings.Join(args, " "), planMode)
		},
	}

	cmd.Flags().BoolVar(&planMode, "plan", false, "request exactly one new file (strict parse)")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, request string, planMode bool) error {
	cfg, workDir, err := opts.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logErr := logging.NewLogger("generate")
	if logErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: session log unavailable: %v\n", logErr)
	}
	defer logger.Close()

	reporter := progress.NewWriterReporter(cmd.OutOrStdout(), logger)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf(multiFilePromptTemplate, cfg.Project, request)
	if planMode {
		prompt = fmt.Sprintf(planPromptTemplate, cfg.Project, request)
	}

	result, err := provider.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	logger.Infof("generation used %d prompt / %d completion tokens",
		result.Usage.PromptTokens, result.Usage.CompletionTokens)

	var set *parser.ProposalSet
	if planMode {
		set, err = parser.ParsePlan(result.Text)
		if err != nil {
			return fmt.Errorf("could not parse plan response: %w", err)
		}
	} else {
		set = parser.ParseSections(result.Text)
		if set.Len() == 0 {
			reporter.Statusf("response contained no file sections, nothing written")
			return nil
		}
	}

	store := workspace.NewStore()
	pipe := pipeline.New(store, verify.NewRunner(workDir, logger), logger, reporter)

	if err := pipe.Apply(set, workDir); err != nil {
		return err
	}

	reporter.Statusf("wrote %d file(s)", set.Len())
	return nil
}
