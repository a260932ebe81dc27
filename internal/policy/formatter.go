/*
Copyright © 2025 the repolicy authors
*/
package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/mattn/go-runewidth"
)

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	FormatConcise  OutputFormat = "concise"
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case FormatConcise, FormatMarkdown, FormatJSON:
		return OutputFormat(strings.ToLower(name)), nil
	default:
		return "", fmt.Errorf("unknown output format %q (concise|markdown|json)", name)
	}
}

// Formatter renders policy reports.
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a formatter for the given output format.
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// Format renders the report.
func (f *Formatter) Format(report *Report) (string, error) {
	switch f.format {
	case FormatJSON:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding report: %w", err)
		}
		return string(out) + "\n", nil
	case FormatMarkdown:
		return renderMarkdown(report)
	default:
		return renderConcise(report), nil
	}
}

func renderConcise(report *Report) string {
	var b strings.Builder
	if report.Clean() {
		fmt.Fprintf(&b, "repolicy: %s is clean\n", report.Metadata.Target)
		return b.String()
	}

	checkerWidth, fileWidth := 7, 4
	for _, finding := range report.Findings {
		if w := runewidth.StringWidth(finding.Checker); w > checkerWidth {
			checkerWidth = w
		}
		if w := runewidth.StringWidth(finding.File); w > fileWidth {
			fileWidth = w
		}
	}

	for _, finding := range report.Findings {
		fmt.Fprintf(&b, "%s  %s  %-9s  %s\n",
			runewidth.FillRight(finding.Checker, checkerWidth),
			runewidth.FillRight(finding.File, fileWidth),
			finding.Status,
			firstLine(finding.Message),
		)
	}
	fmt.Fprintf(&b, "\n%d finding(s): %d corrected, %d violation(s), %d error(s)\n",
		report.Summary.Total, report.Summary.Corrected,
		report.Summary.Violations, report.Summary.Errors)
	b.WriteString("Corrections have been written; review the diff and re-run.\n")
	return b.String()
}

const markdownTemplate = `# Repolicy Report

- **Target**: {{metadata.target}}
{{#if metadata.branch}}- **Branch**: {{metadata.branch}}
{{/if}}- **Tool**: {{metadata.tool}} {{metadata.version}}

{{#if findings}}
| Checker | File | Status | Message |
| --- | --- | --- | --- |
{{#each findings}}| {{checker}} | {{file}} | {{status}} | {{message}} |
{{/each}}

**{{summary.total}} finding(s)**: {{summary.corrected}} corrected, {{summary.violations}} violation(s), {{summary.errors}} error(s).
{{else}}
No findings. The project matches policy.
{{/if}}
`

func renderMarkdown(report *Report) (string, error) {
	// raymond resolves fields via json-style maps; round-trip the report
	var data map[string]interface{}
	raw, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("decoding report: %w", err)
	}
	out, err := raymond.Render(markdownTemplate, data)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
