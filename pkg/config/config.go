// Package config loads the autocoder project configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the workspace when no config path is given.
const DefaultFileName = ".autocoder.yaml"

// Config is the full project configuration.
type Config struct {
	// Project name, used in memory notes and prompts
	Project string `yaml:"project"`

	// Generation backend selection
	Provider ProviderConfig `yaml:"provider"`

	// Verification gate
	Verify VerifyConfig `yaml:"verify"`

	// Self-improvement cycle
	Improve ImproveConfig `yaml:"improve"`

	// Missing-artifact healer
	Heal HealConfig `yaml:"heal"`

	// Memory notes store
	Memory MemoryConfig `yaml:"memory"`
}

// ProviderConfig selects and parameterizes the generation backend.
type ProviderConfig struct {
	// Kind is "openai" or "local"
	Kind    string `yaml:"kind"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// VerifyConfig holds the external verification command, run with the project
// root as working directory.
type VerifyConfig struct {
	Command string `yaml:"command"`
}

// ImproveConfig parameterizes the self-improvement cycle.
type ImproveConfig struct {
	// CandidatePatterns are glob patterns, in priority order, selecting the
	// fixed candidate list for a cycle run.
	CandidatePatterns []string `yaml:"candidate_patterns"`
}

// HealConfig parameterizes the missing-artifact healer.
type HealConfig struct {
	// SourceExtension is appended to module specifiers without one.
	SourceExtension string `yaml:"source_extension"`
}

// MemoryConfig locates the notes store.
type MemoryConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default(workspaceDir string) *Config {
	return &Config{
		Project: filepath.Base(workspaceDir),
		Provider: ProviderConfig{
			Kind:  "openai",
			Model: "gpt-4o",
		},
		Verify: VerifyConfig{
			Command: "npm test",
		},
		Improve: ImproveConfig{
			CandidatePatterns: []string{"src/**.js", "*.js"},
		},
		Heal: HealConfig{
			SourceExtension: ".js",
		},
		Memory: MemoryConfig{
			Dir: filepath.Join(workspaceDir, ".autocoder", "memory"),
		},
	}
}

// Load reads the config file at path and overlays it on the defaults for
// workspaceDir. A missing file is not an error; defaults are returned.
func Load(path, workspaceDir string) (*Config, error) {
	cfg := Default(workspaceDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields other components depend on.
func (c *Config) Validate() error {
	if c.Provider.Kind == "" {
		return fmt.Errorf("provider.kind is required")
	}
	if c.Provider.Kind == "local" && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required for the local provider")
	}
	if c.Verify.Command == "" {
		return fmt.Errorf("verify.command is required")
	}
	if len(c.Improve.CandidatePatterns) == 0 {
		return fmt.Errorf("improve.candidate_patterns must not be empty")
	}
	return nil
}
