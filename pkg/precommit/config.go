// Package precommit models pre-commit configuration files and reconciles
// them against expected hook definitions while preserving formatting.
package precommit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Hook is one named check/fixer entry within a repo entry.
// Field order matches the serialization order pre-commit users expect.
type Hook struct {
	ID                     string   `yaml:"id"`
	Name                   string   `yaml:"name,omitempty"`
	Alias                  string   `yaml:"alias,omitempty"`
	Entry                  string   `yaml:"entry,omitempty"`
	Language               string   `yaml:"language,omitempty"`
	AdditionalDependencies []string `yaml:"additional_dependencies,omitempty"`
	Args                   []string `yaml:"args,omitempty"`
	Files                  string   `yaml:"files,omitempty"`
	Exclude                string   `yaml:"exclude,omitempty"`
	Types                  []string `yaml:"types,omitempty"`
	RequireSerial          bool     `yaml:"require_serial,omitempty"`
	AlwaysRun              bool     `yaml:"always_run,omitempty"`
	PassFilenames          *bool    `yaml:"pass_filenames,omitempty"`
}

// Repo groups hooks sourced from one external tool URL, optionally pinned
// to a revision. The rev field is the mutable version pin: equivalence
// comparisons deliberately ignore it.
type Repo struct {
	Repo  string `yaml:"repo"`
	Rev   string `yaml:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks"`
}

// HookIndex returns the position of the hook with the given id, or -1.
func (r *Repo) HookIndex(hookID string) int {
	for i, hook := range r.Hooks {
		if hook.ID == hookID {
			return i
		}
	}
	return -1
}

// CI is the pre-commit.ci configuration block.
type CI struct {
	AutofixCommitMsg    string   `yaml:"autofix_commit_msg,omitempty"`
	AutofixPRs          *bool    `yaml:"autofix_prs,omitempty"`
	AutoupdateCommitMsg string   `yaml:"autoupdate_commit_msg,omitempty"`
	AutoupdateSchedule  string   `yaml:"autoupdate_schedule,omitempty"`
	Skip                []string `yaml:"skip,omitempty"`
	Submodules          bool     `yaml:"submodules,omitempty"`
}

// Config is a read-only view of the whole pre-commit configuration, for
// checkers that inspect without editing. Editing goes through Document.
type Config struct {
	Repos    []Repo `yaml:"repos"`
	CI       *CI    `yaml:"ci,omitempty"`
	Files    string `yaml:"files,omitempty"`
	Exclude  string `yaml:"exclude,omitempty"`
	FailFast bool   `yaml:"fail_fast,omitempty"`
}

// ParseConfig loads the configuration at path into plain structs.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by checker within project root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// FindRepo returns the first repo entry whose URL matches the pattern.
// Matching is a regex search, not exact equality: historical URL spellings
// may alias one logical repo.
func (c *Config) FindRepo(pattern string) (*Repo, bool) {
	if i := c.RepoIndex(pattern); i >= 0 {
		return &c.Repos[i], true
	}
	return nil, false
}

// RepoIndex returns the index of the first repo entry whose URL matches the
// pattern, or -1.
func (c *Config) RepoIndex(pattern string) int {
	re := regexp.MustCompile(pattern)
	for i, repo := range c.Repos {
		if re.MatchString(repo.Repo) {
			return i
		}
	}
	return -1
}
