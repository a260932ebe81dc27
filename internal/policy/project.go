/*
Copyright © 2025 the repolicy authors
*/
package policy

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/repolicyhq/repolicy/internal/assets"
	"github.com/repolicyhq/repolicy/internal/gitctx"
	"github.com/repolicyhq/repolicy/pkg/config"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// Project is the per-run context handed to every checker: the directory
// under check, the loaded settings, the bundled templates and the git facts.
// It is constructed once per run and passed explicitly; there is no
// process-wide state behind it.
type Project struct {
	Root      string
	Config    *config.Config
	Templates fs.FS
	Git       *gitctx.Context
}

// NewProject builds the run context for the given root directory.
func NewProject(root string, cfg *config.Config) *Project {
	return &Project{
		Root:      root,
		Config:    cfg,
		Templates: assets.GetTemplatesFS(),
		Git:       gitctx.Discover(root),
	}
}

// Path resolves a project-relative path.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Root, rel)
}

// Rel makes an absolute path project-relative for reporting; it falls back
// to the input when the path is outside the project.
func (p *Project) Rel(path string) string {
	if rel, err := filepath.Rel(p.Root, path); err == nil && !filepath.IsAbs(rel) {
		return rel
	}
	return path
}

// ReadFile reads a project-relative file, refusing paths that resolve
// outside the project root.
func (p *Project) ReadFile(rel string) ([]byte, error) {
	return safeio.ReadFileContained(p.Root, p.Path(rel))
}

// Exists reports whether a project-relative file exists.
func (p *Project) Exists(rel string) bool {
	_, err := os.Stat(p.Path(rel))
	return err == nil
}

// PrecommitPath returns the configured pre-commit config location.
func (p *Project) PrecommitPath() string {
	return p.Path(p.Config.Paths.Precommit)
}

// FilterPatterns keeps the glob patterns that match at least one file in
// the project, so generated excludes only name paths that actually exist.
func (p *Project) FilterPatterns(patterns []string) []string {
	var matched []string
	for _, pattern := range patterns {
		hits, err := doublestar.FilepathGlob(filepath.Join(p.Root, filepath.FromSlash(pattern)))
		if err == nil && len(hits) > 0 {
			matched = append(matched, pattern)
		}
	}
	return matched
}
