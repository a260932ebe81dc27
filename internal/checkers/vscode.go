/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

const vscodeSkeleton = "{\n  \"recommendations\": []\n}\n"

// ensureVSCodeExtension adds an extension to the workspace recommendations in
// .vscode/extensions.json, creating the file when absent. Unknown settings in
// an existing file are left untouched.
func ensureVSCodeExtension(checker string, p *policy.Project, extension string) *policy.Finding {
	rel := p.Config.Paths.VSCode
	path := p.Path(rel)
	data, err := p.ReadFile(rel)
	created := false
	if err != nil {
		if !os.IsNotExist(err) {
			f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
			return &f
		}
		data = []byte(vscodeSkeleton)
		created = true
	}
	for _, rec := range gjson.GetBytes(data, "recommendations").Array() {
		if rec.String() == extension {
			return nil
		}
	}
	out, err := sjson.SetBytes(data, "recommendations.-1", extension)
	if err != nil {
		f := policy.Errorf(checker, rel, "cannot update %s: %v", rel, err)
		return &f
	}
	if created {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			f := policy.Errorf(checker, rel, "cannot create %s: %v", filepath.Dir(rel), err)
			return &f
		}
	}
	if err := safeio.WriteFilePreservePerms(path, out); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Added VS Code extension recommendation %q", extension))
	return &f
}

// removeVSCodeExtension drops an extension from the recommendations. Missing
// file or missing entry are both no-ops.
func removeVSCodeExtension(checker string, p *policy.Project, extension string) *policy.Finding {
	rel := p.Config.Paths.VSCode
	path := p.Path(rel)
	data, err := p.ReadFile(rel)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f := policy.Errorf(checker, rel, "cannot read %s: %v", rel, err)
		return &f
	}
	idx := -1
	for i, rec := range gjson.GetBytes(data, "recommendations").Array() {
		if rec.String() == extension {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out, err := sjson.DeleteBytes(data, fmt.Sprintf("recommendations.%d", idx))
	if err != nil {
		f := policy.Errorf(checker, rel, "cannot update %s: %v", rel, err)
		return &f
	}
	if err := safeio.WriteFilePreservePerms(path, out); err != nil {
		f := policy.Errorf(checker, rel, "cannot write %s: %v", rel, err)
		return &f
	}
	f := policy.Corrected(checker, rel, fmt.Sprintf("Removed VS Code extension recommendation %q", extension))
	return &f
}
