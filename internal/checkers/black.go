/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/precommit"
)

const (
	blackRepoURL = "https://github.com/psf/black"
	nbqaRepoURL  = "https://github.com/nbQA-dev/nbQA"

	pythonClassifierPrefix = "Programming Language :: Python :: 3."
)

// pyprojectFacts is the read-only slice of pyproject.toml the black checker
// cares about. pyproject.toml itself is never rewritten; mismatches are
// reported as violations with the expected table.
type pyprojectFacts struct {
	Project struct {
		Classifiers []string `toml:"classifiers"`
	} `toml:"project"`
	Tool struct {
		Black map[string]any `toml:"black"`
		Nbqa  struct {
			Addopts map[string][]string `toml:"addopts"`
		} `toml:"nbqa"`
	} `toml:"tool"`
}

// Black keeps the black formatter setup consistent: the [tool.black] table
// in pyproject.toml, target versions derived from the Python version
// classifiers, the psf/black pre-commit hook and the nbqa-black hook for
// notebooks. Projects without a [tool.black] table are left alone.
type Black struct{}

func (Black) Name() string { return "black" }

func (b Black) Applicable(p *policy.Project) bool {
	facts, err := b.loadFacts(p)
	return err == nil && facts.Tool.Black != nil
}

func (b Black) Run(p *policy.Project) []policy.Finding {
	var findings []policy.Finding
	add := func(f *policy.Finding) {
		if f != nil {
			findings = append(findings, *f)
		}
	}

	rel := p.Config.Paths.Pyproject
	facts, err := b.loadFacts(p)
	if err != nil {
		f := policy.Errorf(b.Name(), rel, "cannot parse %s: %v", rel, err)
		return append(findings, f)
	}

	add(b.checkLineLength(rel, facts))
	add(b.checkPreview(rel, facts))
	add(b.checkOptionOrdering(p, rel))
	add(b.checkTargetVersions(rel, facts))
	add(b.checkNbqaOptions(p, rel, facts))
	add(reconcileRepo(b.Name(), p, precommit.Repo{
		Repo:  blackRepoURL,
		Hooks: []precommit.Hook{{ID: "black"}},
	}))
	add(reconcileHook(b.Name(), p, nbqaRepoURL, precommit.Hook{
		ID:                     "nbqa-black",
		AdditionalDependencies: []string{"black>=22.1.0"},
	}))
	return findings
}

func (b Black) loadFacts(p *policy.Project) (*pyprojectFacts, error) {
	data, err := p.ReadFile(p.Config.Paths.Pyproject)
	if err != nil {
		return nil, err
	}
	var facts pyprojectFacts
	if err := toml.Unmarshal(data, &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

// black's default line length is the project standard; a pinned value would
// drift silently once the default changes.
func (b Black) checkLineLength(rel string, facts *pyprojectFacts) *policy.Finding {
	if _, ok := facts.Tool.Black["line-length"]; !ok {
		return nil
	}
	f := policy.Violation(b.Name(), rel,
		fmt.Sprintf("%s should not specify a line-length (black defaults to 88)", rel))
	return &f
}

func (b Black) checkPreview(rel string, facts *pyprojectFacts) *policy.Finding {
	if enabled, ok := facts.Tool.Black["preview"].(bool); ok && enabled {
		return nil
	}
	f := policy.Violation(b.Name(), rel, fmt.Sprintf(
		"An option in %s is wrong or missing. Should be:\n\n[tool.black]\npreview = true", rel))
	return &f
}

// checkOptionOrdering scans the raw [tool.black] table so the on-disk key
// order is visible; the parsed representation loses it.
func (b Black) checkOptionOrdering(p *policy.Project, rel string) *policy.Finding {
	data, err := p.ReadFile(rel)
	if err != nil {
		f := policy.Errorf(b.Name(), rel, "cannot read %s: %v", rel, err)
		return &f
	}
	options := tableKeys(string(data), "[tool.black]")
	sorted := sortCaseless(options)
	if reflect.DeepEqual(options, sorted) {
		return nil
	}
	message := fmt.Sprintf("Options in %s should be alphabetically sorted:\n\n[tool.black]", rel)
	for _, option := range sorted {
		message += fmt.Sprintf("\n%s = ...", option)
	}
	f := policy.Violation(b.Name(), rel, message)
	return &f
}

func (b Black) checkTargetVersions(rel string, facts *pyprojectFacts) *policy.Finding {
	versions := supportedPythonVersions(facts.Project.Classifiers)
	if len(versions) == 0 {
		f := policy.Violation(b.Name(), rel, fmt.Sprintf(
			"%s declares no Python version classifiers, so black target versions cannot be derived", rel))
		return &f
	}
	expected := make([]string, len(versions))
	for i, version := range versions {
		expected[i] = "py" + strings.ReplaceAll(version, ".", "")
	}
	sort.Strings(expected)

	var actual []string
	if raw, ok := facts.Tool.Black["target-version"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				actual = append(actual, s)
			}
		}
	}
	if reflect.DeepEqual(actual, expected) {
		return nil
	}
	message := fmt.Sprintf(
		"Black target versions in %s should be as follows:\n\n[tool.black]\ntarget-version = [", rel)
	for _, version := range expected {
		message += fmt.Sprintf("\n    '%s',", version)
	}
	message += "\n]"
	f := policy.Violation(b.Name(), rel, message)
	return &f
}

// checkNbqaOptions applies only when the project runs nbQA hooks: notebook
// cells get a shorter line length so they render without horizontal
// scrolling in the documentation theme.
func (b Black) checkNbqaOptions(p *policy.Project, rel string, facts *pyprojectFacts) *policy.Finding {
	cfg, err := precommit.ParseConfig(p.PrecommitPath())
	if err != nil {
		if errors.Is(err, precommit.ErrNotFound) {
			return nil
		}
		f := policy.Errorf(b.Name(), p.Config.Paths.Precommit, "%v", err)
		return &f
	}
	if _, ok := cfg.FindRepo(nbqaRepoURL); !ok {
		return nil
	}
	if reflect.DeepEqual(facts.Tool.Nbqa.Addopts["black"], []string{"--line-length=85"}) {
		return nil
	}
	f := policy.Violation(b.Name(), rel, fmt.Sprintf(
		"%s should configure nbqa-black as follows:\n\n[tool.nbqa.addopts]\nblack = [\n    \"--line-length=85\",\n]", rel))
	return &f
}

// tableKeys lists the top-level keys of one TOML table in file order.
// Continuation lines of multi-line values carry no "=" and are skipped.
func tableKeys(content, header string) []string {
	var keys []string
	inTable := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inTable = trimmed == header
			continue
		}
		if !inTable || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if key, _, found := strings.Cut(trimmed, "="); found {
			keys = append(keys, strings.TrimSpace(key))
		}
	}
	return keys
}

// supportedPythonVersions extracts the supported versions ("3.9", "3.10")
// from the trove classifiers in the project metadata.
func supportedPythonVersions(classifiers []string) []string {
	var versions []string
	for _, classifier := range classifiers {
		classifier = strings.TrimSpace(classifier)
		if strings.HasPrefix(classifier, pythonClassifierPrefix) {
			versions = append(versions, strings.TrimPrefix(classifier, "Programming Language :: Python :: "))
		}
	}
	return versions
}
