/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// addBadge inserts a badge line below the README title, separated by a blank
// line. Trailing <br> tags are ignored when looking for an existing badge.
func addBadge(checker string, p *policy.Project, badge string) *policy.Finding {
	rel := p.Config.Paths.Readme
	path := p.Path(rel)
	data, err := p.ReadFile(rel)
	if err != nil {
		if os.IsNotExist(err) {
			f := policy.Errorf(checker, rel, "repository contains no %s, so no badge can be added", rel)
			return &f
		}
		f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
		return &f
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if stripBadgeLine(line) == badge {
			return nil
		}
	}
	title := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			title = i
			break
		}
	}
	if title < 0 {
		f := policy.Errorf(checker, rel, "%s contains no title, so no badge can be added", rel)
		return &f
	}
	updated := make([]string, 0, len(lines)+2)
	updated = append(updated, lines[:title+1]...)
	updated = append(updated, "", badge)
	updated = append(updated, lines[title+1:]...)
	if err := safeio.WriteFilePreservePerms(path, []byte(strings.Join(updated, "\n"))); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Added badge to %s", rel))
	return &f
}

// removeBadge deletes any badge line matching the pattern. A missing README
// is a no-op.
func removeBadge(checker string, p *policy.Project, pattern *regexp.Regexp) *policy.Finding {
	rel := p.Config.Paths.Readme
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
	for _, line := range lines {
		if pattern.MatchString(line) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil
	}
	if err := safeio.WriteFilePreservePerms(path, []byte(strings.Join(kept, "\n"))); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Removed obsolete badge from %s", rel))
	return &f
}

func stripBadgeLine(line string) string {
	line = strings.TrimRight(line, " ")
	for _, tag := range []string{"<br>", "<br/>", "<br />"} {
		line = strings.TrimSuffix(line, tag)
	}
	return strings.TrimRight(line, " ")
}
