/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"fmt"
	"os"
	"strings"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// ensureLine guarantees a plain-text config file (such as .prettierignore)
// contains the given line, creating the file when absent.
func ensureLine(checker string, p *policy.Project, rel, line string) *policy.Finding {
	path := p.Path(rel)
	data, err := p.ReadFile(rel)
	if err != nil && !os.IsNotExist(err) {
		f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
		return &f
	}
	for _, existing := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(existing) == line {
			return nil
		}
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"
	if err := safeio.WriteFilePreservePerms(path, []byte(content)); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Added %q to %s", line, rel))
	return &f
}

// removeLine drops a line from a plain-text config file. A missing file or
// missing line is a no-op; a file left empty is deleted.
func removeLine(checker string, p *policy.Project, rel, line string) *policy.Finding {
	path := p.Path(rel)
	data, err := p.ReadFile(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
		return &f
	}
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	removed := false
	for _, existing := range lines {
		if strings.TrimSpace(existing) == line {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		return nil
	}
	content := strings.Join(kept, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if strings.TrimSpace(content) == "" {
		if err := os.Remove(path); err != nil {
			f := policy.Errorf(checker, rel, "cannot remove %s: %v", rel, err)
			return &f
		}
		f := policy.Corrected(checker, rel, fmt.Sprintf("Removed %s, which only contained %q", rel, line))
		return &f
	}
	if err := safeio.WriteFilePreservePerms(path, []byte(content)); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Removed %q from %s", line, rel))
	return &f
}
