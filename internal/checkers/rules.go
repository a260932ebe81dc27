/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"bytes"
	"fmt"
	"os"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// Rule is a declarative read-compare-write reconciliation of one config
// file. Checkers that boil down to "this file must look like that" are
// expressed as rules instead of bespoke code.
type Rule struct {
	// Path is the project-relative target file.
	Path func(p *policy.Project) string

	// Trigger reports whether the rule applies at all. Nil means the rule
	// only requires its target (or CreateIfMissing).
	Trigger func(p *policy.Project) bool

	// Expected computes the canonical content from the current content.
	// Returning nil content means the rule has nothing to enforce.
	Expected func(p *policy.Project, existing []byte) ([]byte, error)

	// CreateIfMissing writes the file when it does not exist yet.
	CreateIfMissing bool
}

// Apply reconciles the target file and reports a finding when it had to be
// created or rewritten.
func (r Rule) Apply(checker string, p *policy.Project) *policy.Finding {
	if r.Trigger != nil && !r.Trigger(p) {
		return nil
	}
	rel := r.Path(p)
	path := p.Path(rel)
	existing, err := p.ReadFile(rel)
	missing := false
	if err != nil {
		if !os.IsNotExist(err) {
			f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
			return &f
		}
		if !r.CreateIfMissing {
			return nil
		}
		missing = true
		existing = nil
	}
	expected, err := r.Expected(p, existing)
	if err != nil {
		f := policy.Errorf(checker, rel, "cannot determine expected content of %s: %v", rel, err)
		return &f
	}
	if expected == nil || (!missing && bytes.Equal(existing, expected)) {
		return nil
	}
	if err := safeio.WriteFilePreservePerms(path, expected); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	verb := "Updated"
	if missing {
		verb = "Added"
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("%s %s", verb, rel))
	return &f
}
