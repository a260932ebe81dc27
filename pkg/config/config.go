// Package config loads repolicy settings from the project being checked.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for repolicy
type Config struct {
	Checkers CheckersConfig `mapstructure:"checkers"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Report   ReportConfig   `mapstructure:"report"`
}

// CheckersConfig controls which policy checkers run
type CheckersConfig struct {
	Only []string `mapstructure:"only"` // run only these checkers
	Skip []string `mapstructure:"skip"` // never run these checkers
}

// PathsConfig allows overriding the trigger/target file locations
type PathsConfig struct {
	Precommit      string `mapstructure:"precommit"`
	CSpell         string `mapstructure:"cspell"`
	EditorConfig   string `mapstructure:"editorconfig"`
	Taplo          string `mapstructure:"taplo"`
	Pyproject      string `mapstructure:"pyproject"`
	PrettierIgnore string `mapstructure:"prettier_ignore"`
	VSCode         string `mapstructure:"vscode_extensions"`
	Readme         string `mapstructure:"readme"`
}

// ReportConfig controls report rendering
type ReportConfig struct {
	Format string `mapstructure:"format"` // "concise", "markdown", "json"
}

var defaultConfig = Config{
	Paths: PathsConfig{
		Precommit:      ".pre-commit-config.yaml",
		CSpell:         ".cspell.json",
		EditorConfig:   ".editorconfig",
		Taplo:          ".taplo.toml",
		Pyproject:      "pyproject.toml",
		PrettierIgnore: ".prettierignore",
		VSCode:         filepath.Join(".vscode", "extensions.json"),
		Readme:         "README.md",
	},
	Report: ReportConfig{
		Format: "concise",
	},
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	return defaultConfig
}

// Load reads the optional .repolicy.yaml from the project root, merged over
// defaults and REPOLICY_* environment variables. A missing config file is
// not an error.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("checkers.only", defaultConfig.Checkers.Only)
	v.SetDefault("checkers.skip", defaultConfig.Checkers.Skip)
	v.SetDefault("paths.precommit", defaultConfig.Paths.Precommit)
	v.SetDefault("paths.cspell", defaultConfig.Paths.CSpell)
	v.SetDefault("paths.editorconfig", defaultConfig.Paths.EditorConfig)
	v.SetDefault("paths.taplo", defaultConfig.Paths.Taplo)
	v.SetDefault("paths.pyproject", defaultConfig.Paths.Pyproject)
	v.SetDefault("paths.prettier_ignore", defaultConfig.Paths.PrettierIgnore)
	v.SetDefault("paths.vscode_extensions", defaultConfig.Paths.VSCode)
	v.SetDefault("paths.readme", defaultConfig.Paths.Readme)
	v.SetDefault("report.format", defaultConfig.Report.Format)

	v.SetConfigName(".repolicy")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	v.SetEnvPrefix("REPOLICY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults apply when absent
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// Enabled reports whether a checker with the given name should run.
func (c *Config) Enabled(name string) bool {
	for _, skip := range c.Checkers.Skip {
		if strings.EqualFold(skip, name) {
			return false
		}
	}
	if len(c.Checkers.Only) == 0 {
		return true
	}
	for _, only := range c.Checkers.Only {
		if strings.EqualFold(only, name) {
			return true
		}
	}
	return false
}
