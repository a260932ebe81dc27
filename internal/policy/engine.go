/*
Copyright © 2025 the repolicy authors
*/
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/repolicyhq/repolicy/internal/assets"
	"github.com/repolicyhq/repolicy/pkg/buildinfo"
	"github.com/repolicyhq/repolicy/pkg/logger"
)

// Checker is one configuration concern. Checkers gate themselves on their
// trigger files, run every sub-check even after one fails, and report all
// problems as findings rather than errors.
type Checker interface {
	Name() string
	Applicable(p *Project) bool
	Run(p *Project) []Finding
}

// Engine runs checkers sequentially and aggregates their findings.
type Engine struct {
	checkers []Checker
}

// NewEngine creates an engine over an ordered checker list.
func NewEngine(checkers ...Checker) *Engine {
	return &Engine{checkers: checkers}
}

// Checkers returns the registered checkers in run order.
func (e *Engine) Checkers() []Checker {
	return e.checkers
}

// Run executes every selected, applicable checker against the project. The
// pre-commit configuration is schema-validated first: a structurally invalid
// file is a violation that is never auto-fixed, and reconciliation against
// it is skipped.
func (e *Engine) Run(p *Project) *Report {
	report := &Report{
		Metadata: Metadata{
			GeneratedAt: time.Now(),
			Tool:        "repolicy",
			Version:     buildinfo.BinaryVersion,
			Target:      p.Root,
		},
	}
	if p.Git != nil {
		report.Metadata.Branch = p.Git.Branch
		report.Metadata.RemoteURL = p.Git.RemoteURL
	}

	if findings := validatePrecommitSchema(p); len(findings) > 0 {
		report.Add(findings...)
		return report
	}

	for _, checker := range e.checkers {
		if !p.Config.Enabled(checker.Name()) {
			logger.Debug("checker disabled", logger.String("checker", checker.Name()))
			continue
		}
		if !checker.Applicable(p) {
			logger.Debug("checker not applicable", logger.String("checker", checker.Name()))
			continue
		}
		logger.Debug("running checker", logger.String("checker", checker.Name()))
		report.Metadata.CheckersRun = append(report.Metadata.CheckersRun, checker.Name())
		report.Add(checker.Run(p)...)
	}
	return report
}

// validatePrecommitSchema checks the pre-commit config against the bundled
// JSON schema. A missing file is fine (checkers gate on it themselves).
func validatePrecommitSchema(p *Project) []Finding {
	path := p.PrecommitPath()
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved within project root
	if err != nil {
		return nil
	}

	var value interface{}
	if err := yaml.Unmarshal(data, &value); err != nil {
		return []Finding{Violation("schema", p.Config.Paths.Precommit,
			fmt.Sprintf("%s is not valid YAML: %v", p.Config.Paths.Precommit, err))}
	}
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return []Finding{Violation("schema", p.Config.Paths.Precommit,
			fmt.Sprintf("%s cannot be represented as JSON: %v", p.Config.Paths.Precommit, err))}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(assets.PrecommitSchema()),
		gojsonschema.NewBytesLoader(jsonValue),
	)
	if err != nil {
		return []Finding{Violation("schema", p.Config.Paths.Precommit,
			fmt.Sprintf("validating %s: %v", p.Config.Paths.Precommit, err))}
	}
	if result.Valid() {
		return nil
	}

	findings := make([]Finding, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		findings = append(findings, Violation("schema", p.Config.Paths.Precommit,
			fmt.Sprintf("%s: %s", desc.Field(), desc.Description())))
	}
	return findings
}
