/*
Copyright © 2025 the repolicy authors
*/
package policy

import (
	"fmt"
	"time"
)

// Status classifies the outcome of one policy sub-check.
type Status string

const (
	// StatusOK means the configuration already matched.
	StatusOK Status = "ok"
	// StatusCorrected means a mismatch was detected and fixed in place. A
	// corrected run still fails so a human reviews the diff first.
	StatusCorrected Status = "corrected"
	// StatusViolation means a mismatch the tool deliberately does not
	// auto-fix; it requires a manual edit.
	StatusViolation Status = "violation"
	// StatusError means a prerequisite was missing and the check could not
	// complete (e.g. no readme to hold a badge).
	StatusError Status = "error"
)

// Finding is a single assessment result raised by a checker.
type Finding struct {
	Checker string `json:"checker"`
	File    string `json:"file,omitempty"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Corrected builds a finding for an applied fix.
func Corrected(checker, file, message string) Finding {
	return Finding{Checker: checker, File: file, Status: StatusCorrected, Message: message}
}

// Violation builds a finding for a mismatch that is not auto-fixed.
func Violation(checker, file, message string) Finding {
	return Finding{Checker: checker, File: file, Status: StatusViolation, Message: message}
}

// Errorf builds a finding for a missing prerequisite.
func Errorf(checker, file, format string, args ...interface{}) Finding {
	return Finding{Checker: checker, File: file, Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Summary provides per-status counts for a run.
type Summary struct {
	Total      int `json:"total"`
	Corrected  int `json:"corrected"`
	Violations int `json:"violations"`
	Errors     int `json:"errors"`
}

// Metadata describes the run that produced a report.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	Target      string    `json:"target"`
	Branch      string    `json:"branch,omitempty"`
	RemoteURL   string    `json:"remote_url,omitempty"`
	CheckersRun []string  `json:"checkers_run"`
}

// Report aggregates every finding of one policy run.
type Report struct {
	Metadata Metadata  `json:"metadata"`
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// Add appends findings, dropping StatusOK entries and keeping counts current.
func (r *Report) Add(findings ...Finding) {
	for _, f := range findings {
		if f.Status == StatusOK {
			continue
		}
		r.Findings = append(r.Findings, f)
		r.Summary.Total++
		switch f.Status {
		case StatusCorrected:
			r.Summary.Corrected++
		case StatusViolation:
			r.Summary.Violations++
		case StatusError:
			r.Summary.Errors++
		}
	}
}

// Clean reports whether the run found nothing to fix or flag.
func (r *Report) Clean() bool {
	return r.Summary.Total == 0
}
