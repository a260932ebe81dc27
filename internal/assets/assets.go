// Package assets holds the canonical configuration templates and schemas
// that repolicy ships with. Checkers diff project files against these.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templates embed.FS

//go:embed schemas/pre-commit-config.schema.json
var precommitSchema []byte

// GetTemplatesFS returns the bundled template tree rooted at its contents.
func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(templates, "templates"); err == nil {
		return sub
	}
	return templates
}

// GetTemplate retrieves one bundled template by name (e.g. "cspell.json").
func GetTemplate(name string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), name)
}

// PrecommitSchema returns the JSON schema the pre-commit configuration is
// validated against before any reconciliation runs.
func PrecommitSchema() []byte {
	return precommitSchema
}
