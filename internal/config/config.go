// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in GenerationConfig.Backend.
const (
	BackendOpenAI   = "openai"
	BackendOpencode = "opencode"
)

// Config represents the complete refactor-swarm configuration
type Config struct {
	Sandbox    SandboxConfig    `yaml:"sandbox"`
	Analyzer   CommandConfig    `yaml:"analyzer"`
	Tests      CommandConfig    `yaml:"tests"`
	Generation GenerationConfig `yaml:"generation"`
	Loop       LoopConfig       `yaml:"loop"`
}

// SandboxConfig holds locations kept under the sandbox root
type SandboxConfig struct {
	BackupDir string `yaml:"backup_dir"`
	Journal   string `yaml:"journal"`
}

// CommandConfig describes one subprocess collaborator invocation
type CommandConfig struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// GenerationConfig selects and configures the text-generation backend
type GenerationConfig struct {
	Backend        string `yaml:"backend"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoopConfig bounds the fix iteration loop
type LoopConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// Default returns the configuration used when no file is present.
// The command defaults match the original pylint/pytest toolchain.
func Default() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			BackupDir: ".backups",
			Journal:   "logs/journal.jsonl",
		},
		Analyzer: CommandConfig{
			Command:        "pylint",
			Args:           []string{"--output-format=text", "--score=yes"},
			TimeoutSeconds: 30,
		},
		Tests: CommandConfig{
			Command:        "pytest",
			Args:           []string{"-v", "--tb=short"},
			TimeoutSeconds: 60,
		},
		Generation: GenerationConfig{
			Backend:        BackendOpenAI,
			Model:          "mistral-large-latest",
			BaseURL:        "https://api.mistral.ai/v1",
			APIKeyEnv:      "MISTRAL_API_KEY",
			TimeoutSeconds: 120,
		},
		Loop: LoopConfig{
			MaxIterations: 5,
		},
	}
}

// Load reads the configuration from path. An empty path or a missing file
// yields the defaults; a present but malformed file is an error. Fields left
// unset in the file fall back to their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores defaults for fields an explicit file left empty.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Sandbox.BackupDir == "" {
		c.Sandbox.BackupDir = def.Sandbox.BackupDir
	}
	if c.Sandbox.Journal == "" {
		c.Sandbox.Journal = def.Sandbox.Journal
	}
	if c.Analyzer.Command == "" {
		c.Analyzer = def.Analyzer
	}
	if c.Analyzer.TimeoutSeconds == 0 {
		c.Analyzer.TimeoutSeconds = def.Analyzer.TimeoutSeconds
	}
	if c.Tests.Command == "" {
		c.Tests = def.Tests
	}
	if c.Tests.TimeoutSeconds == 0 {
		c.Tests.TimeoutSeconds = def.Tests.TimeoutSeconds
	}
	if c.Generation.Backend == "" {
		c.Generation.Backend = def.Generation.Backend
	}
	if c.Generation.Model == "" {
		c.Generation.Model = def.Generation.Model
	}
	if c.Generation.APIKeyEnv == "" {
		c.Generation.APIKeyEnv = def.Generation.APIKeyEnv
	}
	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = def.Generation.TimeoutSeconds
	}
	if c.Loop.MaxIterations == 0 {
		c.Loop.MaxIterations = def.Loop.MaxIterations
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Analyzer.Command == "" {
		return fmt.Errorf("analyzer command is required")
	}
	if c.Analyzer.TimeoutSeconds <= 0 {
		return fmt.Errorf("analyzer timeout must be positive")
	}
	if c.Tests.Command == "" {
		return fmt.Errorf("test command is required")
	}
	if c.Tests.TimeoutSeconds <= 0 {
		return fmt.Errorf("test timeout must be positive")
	}
	if c.Generation.Backend != BackendOpenAI && c.Generation.Backend != BackendOpencode {
		return fmt.Errorf("unknown generation backend %q", c.Generation.Backend)
	}
	if c.Generation.TimeoutSeconds <= 0 {
		return fmt.Errorf("generation timeout must be positive")
	}
	if c.Loop.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive")
	}
	return nil
}
