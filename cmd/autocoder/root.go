package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/autocoder-sub000/pkg/config"
	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/llm/openai"
)

const version = "0.1.0"

// rootOptions are the persistent flags shared by all subcommands.
type rootOptions struct {
	workspace  string
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "autocoder",
		Short:         "Verified, rollback-safe code generation for a project workspace",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", ".", "project workspace directory")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: <workspace>/"+config.DefaultFileName+")")

	cmd.AddCommand(newImproveCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newHealCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig resolves the workspace and reads the configuration.
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	workDir, err := filepath.Abs(o.workspace)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve workspace: %w", err)
	}

	configPath := o.configPath
	if configPath == "" {
		configPath = filepath.Join(workDir, config.DefaultFileName)
	}

	cfg, err := config.Load(configPath, workDir)
	if err != nil {
		return nil, "", err
	}
	return cfg, workDir, nil
}

// buildProvider resolves the configured provider kind once, at startup.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	kind, err := llm.ParseKind(cfg.Provider.Kind)
	if err != nil {
		return nil, err
	}

	var opts []openai.ProviderOption
	if cfg.Provider.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Provider.Model))
	}
	if cfg.Provider.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
	}

	switch kind {
	case llm.KindOpenAI:
		return openai.NewProvider(cfg.Provider.APIKey, opts...)
	case llm.KindLocal:
		// local inference servers rarely check the key, but the client
		// requires one
		apiKey := cfg.Provider.APIKey
		if apiKey == "" {
			apiKey = "local"
		}
		return openai.NewProvider(apiKey, opts...)
	default:
		return nil, fmt.Errorf("unhandled provider kind %q", kind)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the autocoder version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "autocoder v%s\n", version)
		},
	}
}
