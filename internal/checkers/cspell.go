/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"regexp"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/precommit"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

const (
	cspellRepoURL    = "https://github.com/streetsidesoftware/cspell-cli"
	cspellHookID     = "cspell"
	cspellConfigName = "cspell.json" // legacy, undotted
	cspellExtension  = "streetsidesoftware.code-spell-checker"
	cspellBadge      = "[![Spelling checked](https://img.shields.io/badge/cspell-checked-brightgreen.svg)](https://github.com/streetsidesoftware/cspell-cli)"
)

var cspellBadgePattern = regexp.MustCompile(`\[!\[[Ss]pell.*\]\(.*cspell.*\)\]\(.*\)`)

// vocabularySections hold project-specific word lists; their content is the
// project's own and only gets sorted, never replaced.
var vocabularySections = map[string]bool{
	"words":       true,
	"ignoreWords": true,
}

// CSpell enforces spell-checking through cspell-cli: the pre-commit hook,
// the .cspell.json configuration, editor integration and the README badge.
// When the project does not run the hook, the checker removes the leftover
// artifacts instead.
type CSpell struct{}

func (CSpell) Name() string { return "cspell" }

func (CSpell) Applicable(p *policy.Project) bool {
	return p.Exists(p.Config.Paths.Precommit)
}

func (c CSpell) Run(p *policy.Project) []policy.Finding {
	var findings []policy.Finding
	add := func(f *policy.Finding) {
		if f != nil {
			findings = append(findings, *f)
		}
	}

	add(c.renameLegacyConfig(p))

	cfg, err := precommit.ParseConfig(p.PrecommitPath())
	if err != nil {
		f := policy.Errorf(c.Name(), p.Config.Paths.Precommit, "%v", err)
		return append(findings, f)
	}
	if _, ok := cfg.FindRepo(`.*/mirrors-cspell`); ok {
		findings = append(findings, policy.Violation(c.Name(), p.Config.Paths.Precommit,
			fmt.Sprintf("cspell should be run through %s, not through the mirrors-cspell repository", cspellRepoURL)))
	}
	if _, adopted := cfg.FindRepo(cspellRepoURL); !adopted {
		return append(findings, c.removeArtifacts(p)...)
	}

	add(reconcileRepo(c.Name(), p, precommit.Repo{
		Repo:  cspellRepoURL,
		Hooks: []precommit.Hook{{ID: cspellHookID}},
	}))
	add(c.fixConfig(p))
	add(ensureLine(c.Name(), p, p.Config.Paths.PrettierIgnore, p.Config.Paths.CSpell))
	add(addBadge(c.Name(), p, cspellBadge))
	add(ensureVSCodeExtension(c.Name(), p, cspellExtension))
	return findings
}

// renameLegacyConfig moves an undotted cspell.json to the canonical
// .cspell.json location.
func (c CSpell) renameLegacyConfig(p *policy.Project) *policy.Finding {
	if !p.Exists(cspellConfigName) || p.Exists(p.Config.Paths.CSpell) {
		return nil
	}
	if err := os.Rename(p.Path(cspellConfigName), p.Path(p.Config.Paths.CSpell)); err != nil {
		f := policy.Errorf(c.Name(), cspellConfigName, "cannot rename %s: %v", cspellConfigName, err)
		return &f
	}
	f := policy.Corrected(c.Name(), p.Config.Paths.CSpell,
		fmt.Sprintf("Renamed %s to %s", cspellConfigName, p.Config.Paths.CSpell))
	return &f
}

// removeArtifacts cleans up cspell leftovers in a project that no longer
// runs the hook.
func (c CSpell) removeArtifacts(p *policy.Project) []policy.Finding {
	var findings []policy.Finding
	add := func(f *policy.Finding) {
		if f != nil {
			findings = append(findings, *f)
		}
	}
	if p.Exists(p.Config.Paths.CSpell) {
		if err := os.Remove(p.Path(p.Config.Paths.CSpell)); err != nil {
			f := policy.Errorf(c.Name(), p.Config.Paths.CSpell, "cannot remove %s: %v", p.Config.Paths.CSpell, err)
			add(&f)
		} else {
			f := policy.Corrected(c.Name(), p.Config.Paths.CSpell,
				fmt.Sprintf("Removed %s: the cspell hook is not active", p.Config.Paths.CSpell))
			add(&f)
		}
	}
	add(removeLine(c.Name(), p, p.Config.Paths.PrettierIgnore, p.Config.Paths.CSpell))
	add(removeBadge(c.Name(), p, cspellBadgePattern))
	add(removeVSCodeExtension(c.Name(), p, cspellExtension))
	return findings
}

// fixConfig reconciles .cspell.json against the bundled template. Template
// sections are enforced verbatim (sorted where they are lists); vocabulary
// sections stay project-owned but must exist and be sorted case-insensitively.
// Sections the template does not know about are preserved as-is.
func (c CSpell) fixConfig(p *policy.Project) *policy.Finding {
	rel := p.Config.Paths.CSpell
	path := p.Path(rel)

	existing := map[string]any{}
	data, err := p.ReadFile(rel)
	if err != nil && !os.IsNotExist(err) {
		f := policy.Errorf(c.Name(), rel, "cannot read %s: %v", rel, err)
		return &f
	}
	if err == nil {
		if jerr := json.Unmarshal(data, &existing); jerr != nil {
			f := policy.Errorf(c.Name(), rel, "cannot parse %s: %v", rel, jerr)
			return &f
		}
	}

	template, err := c.template(p)
	if err != nil {
		f := policy.Errorf(c.Name(), rel, "cannot load cspell template: %v", err)
		return &f
	}

	var fixed []string
	for section, want := range template {
		got, present := existing[section]
		if vocabularySections[section] {
			if !present {
				existing[section] = []any{}
				fixed = append(fixed, section)
				continue
			}
			if sorted, changed := sortedList(got); changed {
				existing[section] = sorted
				fixed = append(fixed, section)
			}
			continue
		}
		if sorted, _ := sortedList(want); sorted != nil {
			want = sorted
		}
		if !present || !reflect.DeepEqual(got, want) {
			existing[section] = want
			fixed = append(fixed, section)
		}
	}
	for section, value := range existing {
		if _, known := template[section]; known {
			continue
		}
		if sorted, changed := sortedList(value); changed {
			existing[section] = sorted
			fixed = append(fixed, section)
		}
	}
	if len(fixed) == 0 {
		return nil
	}

	out, err := json.MarshalIndent(existing, "", "    ")
	if err != nil {
		f := policy.Errorf(c.Name(), rel, "cannot encode %s: %v", rel, err)
		return &f
	}
	if err := safeio.WriteFilePreservePerms(path, append(out, '\n')); err != nil {
		f := policy.Errorf(c.Name(), rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(c.Name(), rel,
		fmt.Sprintf("%s in %s updated", expressSections(sortCaseless(fixed)), rel))
	return &f
}

func (c CSpell) template(p *policy.Project) (map[string]any, error) {
	data, err := fs.ReadFile(p.Templates, "cspell.json")
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// sortedList sorts a JSON string list case-insensitively. It returns the
// sorted list and whether the order changed; non-list values return nil.
func sortedList(value any) ([]any, bool) {
	items, ok := value.([]any)
	if !ok {
		return nil, false
	}
	strs := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		strs = append(strs, s)
	}
	sorted := sortCaseless(strs)
	out := make([]any, len(sorted))
	changed := false
	for i, s := range sorted {
		out[i] = s
		if s != strs[i] {
			changed = true
		}
	}
	return out, changed
}
