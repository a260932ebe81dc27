/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/precommit"
)

const editorConfigRepoURL = "https://github.com/editorconfig-checker/editorconfig-checker.python"

// EditorConfig makes sure projects that carry an .editorconfig actually
// enforce it through the editorconfig-checker pre-commit hook.
type EditorConfig struct{}

func (EditorConfig) Name() string { return "editorconfig" }

func (EditorConfig) Applicable(p *policy.Project) bool {
	return p.Exists(p.Config.Paths.EditorConfig) && p.Exists(p.Config.Paths.Precommit)
}

func (e EditorConfig) Run(p *policy.Project) []policy.Finding {
	expected := precommit.Repo{
		Repo: editorConfigRepoURL,
		Hooks: []precommit.Hook{{
			ID:      "editorconfig-checker",
			Name:    "editorconfig",
			Alias:   "ec",
			Exclude: "(?x)^(\n  .*\\.min\\.css\n  |.*\\.min\\.js\n)$",
		}},
	}
	if f := reconcileRepo(e.Name(), p, expected); f != nil {
		return []policy.Finding{*f}
	}
	return nil
}
