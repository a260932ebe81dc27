/*
Copyright © 2025 the repolicy authors
*/
package checkers

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/config"
)

func newProject(t *testing.T) *policy.Project {
	t.Helper()
	cfg := config.Default()
	return policy.NewProject(t.TempDir(), &cfg)
}

func writeProjectFile(t *testing.T, p *policy.Project, rel, content string) {
	t.Helper()
	path := p.Path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readProjectFile(t *testing.T, p *policy.Project, rel string) string {
	t.Helper()
	data, err := os.ReadFile(p.Path(rel))
	require.NoError(t, err)
	return string(data)
}

func TestSortCaseless(t *testing.T) {
	got := sortCaseless([]string{"zebra", "Apple", "mango"})
	assert.Equal(t, []string{"Apple", "mango", "zebra"}, got)
}

func TestExpressSections(t *testing.T) {
	assert.Equal(t, "", expressSections(nil))
	assert.Equal(t, `Section "words"`, expressSections([]string{"words"}))
	assert.Equal(t, `Sections "words" and "language"`, expressSections([]string{"words", "language"}))
	assert.Equal(t, `Sections "a", "b", and "c"`, expressSections([]string{"a", "b", "c"}))
}

func TestEnsureLine(t *testing.T) {
	p := newProject(t)

	f := ensureLine("test", p, ".prettierignore", ".cspell.json")
	require.NotNil(t, f)
	assert.Equal(t, policy.StatusCorrected, f.Status)
	assert.Equal(t, ".cspell.json\n", readProjectFile(t, p, ".prettierignore"))

	assert.Nil(t, ensureLine("test", p, ".prettierignore", ".cspell.json"))

	f = ensureLine("test", p, ".prettierignore", "dist/")
	require.NotNil(t, f)
	assert.Equal(t, ".cspell.json\ndist/\n", readProjectFile(t, p, ".prettierignore"))
}

func TestRemoveLine(t *testing.T) {
	p := newProject(t)
	writeProjectFile(t, p, ".prettierignore", ".cspell.json\ndist/\n")

	f := removeLine("test", p, ".prettierignore", "dist/")
	require.NotNil(t, f)
	assert.Equal(t, ".cspell.json\n", readProjectFile(t, p, ".prettierignore"))

	// removing the last meaningful line deletes the file
	f = removeLine("test", p, ".prettierignore", ".cspell.json")
	require.NotNil(t, f)
	assert.False(t, p.Exists(".prettierignore"))

	assert.Nil(t, removeLine("test", p, ".prettierignore", ".cspell.json"))
}

func TestRemoveLineKeepsTrailingNewline(t *testing.T) {
	p := newProject(t)
	writeProjectFile(t, p, ".prettierignore", ".cspell.json\ndist/")

	require.NotNil(t, removeLine("test", p, ".prettierignore", "dist/"))
	assert.Equal(t, ".cspell.json\n", readProjectFile(t, p, ".prettierignore"))
}

func TestEnsureVSCodeExtension(t *testing.T) {
	p := newProject(t)

	f := ensureVSCodeExtension("test", p, "golang.go")
	require.NotNil(t, f)
	assert.Equal(t, policy.StatusCorrected, f.Status)

	content := readProjectFile(t, p, ".vscode/extensions.json")
	recs := gjson.Get(content, "recommendations").Array()
	require.Len(t, recs, 1)
	assert.Equal(t, "golang.go", recs[0].String())

	assert.Nil(t, ensureVSCodeExtension("test", p, "golang.go"))

	require.NotNil(t, ensureVSCodeExtension("test", p, "tamasfe.even-better-toml"))
	content = readProjectFile(t, p, ".vscode/extensions.json")
	assert.Len(t, gjson.Get(content, "recommendations").Array(), 2)
}

func TestEnsureVSCodeExtensionKeepsUnknownSettings(t *testing.T) {
	p := newProject(t)
	writeProjectFile(t, p, ".vscode/extensions.json",
		`{"recommendations": ["golang.go"], "unwantedRecommendations": ["x.y"]}`)

	require.NotNil(t, ensureVSCodeExtension("test", p, "a.b"))
	content := readProjectFile(t, p, ".vscode/extensions.json")
	assert.Equal(t, "x.y", gjson.Get(content, "unwantedRecommendations.0").String())
	assert.Len(t, gjson.Get(content, "recommendations").Array(), 2)
}

func TestRemoveVSCodeExtension(t *testing.T) {
	p := newProject(t)
	assert.Nil(t, removeVSCodeExtension("test", p, "golang.go"), "missing file is a no-op")

	writeProjectFile(t, p, ".vscode/extensions.json",
		`{"recommendations": ["golang.go", "bungcip.better-toml"]}`)
	f := removeVSCodeExtension("test", p, "bungcip.better-toml")
	require.NotNil(t, f)

	content := readProjectFile(t, p, ".vscode/extensions.json")
	recs := gjson.Get(content, "recommendations").Array()
	require.Len(t, recs, 1)
	assert.Equal(t, "golang.go", recs[0].String())

	assert.Nil(t, removeVSCodeExtension("test", p, "bungcip.better-toml"))
}

func TestAddBadge(t *testing.T) {
	p := newProject(t)
	badge := "[![Checked](https://example.org/badge.svg)](https://example.org)"

	f := addBadge("test", p, badge)
	require.NotNil(t, f)
	assert.Equal(t, policy.StatusError, f.Status, "no README to add a badge to")

	writeProjectFile(t, p, "README.md", "just text, no title\n")
	f = addBadge("test", p, badge)
	require.NotNil(t, f)
	assert.Equal(t, policy.StatusError, f.Status)

	writeProjectFile(t, p, "README.md", "# My Project\n\nSome intro.\n")
	f = addBadge("test", p, badge)
	require.NotNil(t, f)
	assert.Equal(t, policy.StatusCorrected, f.Status)
	assert.Equal(t, "# My Project\n\n"+badge+"\n\nSome intro.\n", readProjectFile(t, p, "README.md"))

	assert.Nil(t, addBadge("test", p, badge))
}

func TestAddBadgeIgnoresTrailingBreaks(t *testing.T) {
	p := newProject(t)
	badge := "[![Checked](https://example.org/badge.svg)](https://example.org)"
	writeProjectFile(t, p, "README.md", "# Title\n\n"+badge+" <br />\n")
	assert.Nil(t, addBadge("test", p, badge))
}

func TestRemoveBadge(t *testing.T) {
	p := newProject(t)
	pattern := regexp.MustCompile(`\[!\[Checked\]`)
	assert.Nil(t, removeBadge("test", p, pattern), "missing README is a no-op")

	writeProjectFile(t, p, "README.md",
		"# Title\n\n[![Checked](https://example.org/b.svg)](https://example.org)\n\nIntro.\n")
	f := removeBadge("test", p, pattern)
	require.NotNil(t, f)
	assert.NotContains(t, readProjectFile(t, p, "README.md"), "[![Checked]")

	assert.Nil(t, removeBadge("test", p, pattern))
}
