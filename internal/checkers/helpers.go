/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/precommit"
)

// caseless sorts configuration entries the way spell checkers and hook
// lists expect: alphabetically, ignoring case.
var caseless = collate.New(language.Und, collate.IgnoreCase)

func sortCaseless(items []string) []string {
	sorted := append([]string(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return caseless.CompareString(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// reconcileRepo runs the engine for one expected single-hook repo entry and
// converts the outcome into a finding. A missing pre-commit config is a
// silent no-op: hook policies never create the file.
func reconcileRepo(checker string, p *policy.Project, expected precommit.Repo) *policy.Finding {
	doc, err := precommit.LoadDocument(p.PrecommitPath())
	if err != nil {
		if errors.Is(err, precommit.ErrNotFound) {
			return nil
		}
		f := policy.Errorf(checker, p.Config.Paths.Precommit, "%v", err)
		return &f
	}
	corr, err := precommit.ReconcileRepo(doc, expected)
	if err != nil {
		f := policy.Errorf(checker, p.Config.Paths.Precommit, "%v", err)
		return &f
	}
	if corr == nil {
		return nil
	}
	f := policy.Corrected(checker, p.Config.Paths.Precommit, corr.Message)
	return &f
}

// reconcileHook runs the engine for one expected hook inside an existing
// repo entry. Both a missing pre-commit config and a missing repo entry are
// silent no-ops: the hook belongs to a tool the project has not adopted.
func reconcileHook(checker string, p *policy.Project, repoURL string, expected precommit.Hook) *policy.Finding {
	doc, err := precommit.LoadDocument(p.PrecommitPath())
	if err != nil {
		if errors.Is(err, precommit.ErrNotFound) {
			return nil
		}
		f := policy.Errorf(checker, p.Config.Paths.Precommit, "%v", err)
		return &f
	}
	corr, err := precommit.ReconcileHook(doc, repoURL, expected)
	if err != nil {
		f := policy.Errorf(checker, p.Config.Paths.Precommit, "%v", err)
		return &f
	}
	if corr == nil {
		return nil
	}
	f := policy.Corrected(checker, p.Config.Paths.Precommit, corr.Message)
	return &f
}

// expressSections converts section names into natural language:
// one section -> `Section "a"`, several -> `Sections "a", "b", and "c"`.
func expressSections(sections []string) string {
	switch len(sections) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Section %q", sections[0])
	case 2:
		return fmt.Sprintf("Sections %q and %q", sections[0], sections[1])
	default:
		out := "Sections "
		for _, s := range sections[:len(sections)-1] {
			out += fmt.Sprintf("%q, ", s)
		}
		return out + fmt.Sprintf("and %q", sections[len(sections)-1])
	}
}
