/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/precommit"
)

const (
	taploRepoURL    = "https://github.com/ComPWA/mirrors-taplo"
	tomlSortRepoURL = "https://github.com/pappasam/toml-sort"
	tomlExtension   = "tamasfe.even-better-toml"
	// superseded marketplace id for the same extension
	legacyTOMLExtension = "bungcip.better-toml"
	legacyTaploConfig   = "taplo.toml" // undotted
)

// taploConfig mirrors the settings repolicy manages in .taplo.toml. Field
// order here is the output order.
type taploConfig struct {
	Exclude    []string       `toml:"exclude,omitempty"`
	Formatting map[string]any `toml:"formatting,omitempty"`
}

// TOML keeps TOML formatting and sorting consistent: a canonical .taplo.toml,
// the taplo and toml-sort pre-commit hooks, sorting settings in
// pyproject.toml and the matching editor extension.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) Applicable(p *policy.Project) bool {
	return p.Exists(p.Config.Paths.Pyproject) ||
		p.Exists(p.Config.Paths.Taplo) ||
		p.Exists(legacyTaploConfig)
}

func (t TOML) Run(p *policy.Project) []policy.Finding {
	var findings []policy.Finding
	add := func(f *policy.Finding) {
		if f != nil {
			findings = append(findings, *f)
		}
	}

	add(t.renameLegacyConfig(p))
	add(t.taploRule().Apply(t.Name(), p))
	add(reconcileRepo(t.Name(), p, precommit.Repo{
		Repo:  taploRepoURL,
		Hooks: []precommit.Hook{{ID: "taplo"}},
	}))
	add(reconcileRepo(t.Name(), p, precommit.Repo{
		Repo: tomlSortRepoURL,
		Hooks: []precommit.Hook{{
			ID:      "toml-sort",
			Args:    []string{"--in-place"},
			Exclude: t.sortExclude(p),
		}},
	}))
	add(t.checkSortSettings(p))
	add(ensureVSCodeExtension(t.Name(), p, tomlExtension))
	add(removeVSCodeExtension(t.Name(), p, legacyTOMLExtension))
	return findings
}

func (t TOML) renameLegacyConfig(p *policy.Project) *policy.Finding {
	if !p.Exists(legacyTaploConfig) || p.Exists(p.Config.Paths.Taplo) {
		return nil
	}
	if err := os.Rename(p.Path(legacyTaploConfig), p.Path(p.Config.Paths.Taplo)); err != nil {
		f := policy.Errorf(t.Name(), legacyTaploConfig, "cannot rename %s: %v", legacyTaploConfig, err)
		return &f
	}
	f := policy.Corrected(t.Name(), p.Config.Paths.Taplo,
		fmt.Sprintf("Renamed %s to %s", legacyTaploConfig, p.Config.Paths.Taplo))
	return &f
}

// taploRule reconciles .taplo.toml against the bundled template, keeping
// only the exclude patterns that match files in this project.
func (t TOML) taploRule() Rule {
	return Rule{
		Path:            func(p *policy.Project) string { return p.Config.Paths.Taplo },
		CreateIfMissing: true,
		Expected: func(p *policy.Project, _ []byte) ([]byte, error) {
			data, err := fs.ReadFile(p.Templates, "taplo.toml")
			if err != nil {
				return nil, err
			}
			var tpl taploConfig
			if err := toml.Unmarshal(data, &tpl); err != nil {
				return nil, err
			}
			tpl.Exclude = sortCaseless(p.FilterPatterns(tpl.Exclude))
			return toml.Marshal(tpl)
		},
	}
}

// sortExclude builds the toml-sort exclude regex from the taplo excludes
// that apply to this project.
func (t TOML) sortExclude(p *policy.Project) string {
	data, err := fs.ReadFile(p.Templates, "taplo.toml")
	if err != nil {
		return ""
	}
	var tpl taploConfig
	if err := toml.Unmarshal(data, &tpl); err != nil {
		return ""
	}
	patterns := sortCaseless(p.FilterPatterns(tpl.Exclude))
	if len(patterns) == 0 {
		return ""
	}
	regexes := make([]string, len(patterns))
	for i, pattern := range patterns {
		regexes[i] = globToRegex(pattern)
	}
	return "(?x)^(" + strings.Join(regexes, "|") + ")$"
}

// checkSortSettings verifies the [tool.tomlsort] table in pyproject.toml.
// A mismatch is reported as a violation with the expected table, not
// rewritten: pyproject.toml carries hand-written layout and comments that a
// re-serialization would destroy.
func (t TOML) checkSortSettings(p *policy.Project) *policy.Finding {
	rel := p.Config.Paths.Pyproject
	data, err := p.ReadFile(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f := policy.Errorf(t.Name(), rel, "cannot read %s: %v", rel, err)
		return &f
	}
	var doc struct {
		Tool struct {
			TomlSort tomlSortSettings `toml:"tomlsort"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		f := policy.Errorf(t.Name(), rel, "cannot parse %s: %v", rel, err)
		return &f
	}
	if reflect.DeepEqual(doc.Tool.TomlSort, expectedTomlSort) {
		return nil
	}
	block, err := toml.Marshal(map[string]map[string]tomlSortSettings{
		"tool": {"tomlsort": expectedTomlSort},
	})
	if err != nil {
		f := policy.Errorf(t.Name(), rel, "cannot render expected settings: %v", err)
		return &f
	}
	f := policy.Violation(t.Name(), rel,
		fmt.Sprintf("%s should configure toml-sort as follows:\n\n%s", rel, string(block)))
	return &f
}

type tomlSortSettings struct {
	All                      bool     `toml:"all"`
	IgnoreCase               bool     `toml:"ignore_case"`
	InPlace                  bool     `toml:"in_place"`
	SortFirst                []string `toml:"sort_first"`
	SortTableKeys            bool     `toml:"sort_table_keys"`
	SpacesIndentInlineArray  int      `toml:"spaces_indent_inline_array"`
	TrailingCommaInlineArray bool     `toml:"trailing_comma_inline_array"`
}

var expectedTomlSort = tomlSortSettings{
	All:                      false,
	IgnoreCase:               true,
	InPlace:                  true,
	SortFirst:                []string{"build-system", "project", "tool"},
	SortTableKeys:            true,
	SpacesIndentInlineArray:  4,
	TrailingCommaInlineArray: true,
}

// globToRegex converts a taplo glob into the regex dialect toml-sort's
// exclude option expects.
func globToRegex(glob string) string {
	out := strings.ReplaceAll(glob, "**", "*")
	out = strings.ReplaceAll(out, ".", `\.`)
	return strings.ReplaceAll(out, "*", ".*")
}
