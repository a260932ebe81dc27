package precommit

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reloadConfig(t *testing.T, path string) *Config {
	t.Helper()
	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestReconcileRepoInsertsAlphabetically(t *testing.T) {
	path := writeDoc(t, "repos: []\n")

	// deliberately out of order: b, a, c
	for _, id := range []string{"b-hook", "a-hook", "c-hook"} {
		doc, err := LoadDocument(path)
		require.NoError(t, err)
		corr, err := ReconcileRepo(doc, Repo{
			Repo:  "https://github.com/example/" + id,
			Hooks: []Hook{{ID: id}},
		})
		require.NoError(t, err)
		require.NotNil(t, corr)
		assert.Equal(t, ActionAdded, corr.Action)
		assert.Equal(t, id, corr.HookID)
	}

	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos, 3)
	assert.Equal(t, "a-hook", cfg.Repos[0].Hooks[0].ID)
	assert.Equal(t, "b-hook", cfg.Repos[1].Hooks[0].ID)
	assert.Equal(t, "c-hook", cfg.Repos[2].Hooks[0].ID)
}

func TestReconcileRepoOrderingIsCaseInsensitive(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/example/black
    rev: v1.0.0
    hooks:
      - id: Black
  - repo: https://github.com/example/taplo
    rev: v2.0.0
    hooks:
      - id: taplo
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)
	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/cspell",
		Hooks: []Hook{{ID: "cspell"}},
	})
	require.NoError(t, err)
	require.NotNil(t, corr)

	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos, 3)
	assert.Equal(t, "Black", cfg.Repos[0].Hooks[0].ID)
	assert.Equal(t, "cspell", cfg.Repos[1].Hooks[0].ID)
	assert.Equal(t, "taplo", cfg.Repos[2].Hooks[0].ID)
}

func TestReconcileRepoSkipsMultiHookEntriesAsAnchors(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/pre-commit/pre-commit-hooks
    rev: v4.1.0
    hooks:
      - id: check-yaml
      - id: end-of-file-fixer
  - repo: https://github.com/example/mypy
    rev: v1.0.0
    hooks:
      - id: mypy
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)
	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/a-tool",
		Hooks: []Hook{{ID: "a-tool"}},
	})
	require.NoError(t, err)
	require.NotNil(t, corr)

	// check-yaml would sort after a-tool, but the multi-hook entry stays put
	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos, 3)
	assert.Equal(t, "check-yaml", cfg.Repos[0].Hooks[0].ID)
	assert.Equal(t, "a-tool", cfg.Repos[1].Hooks[0].ID)
	assert.Equal(t, "mypy", cfg.Repos[2].Hooks[0].ID)
}

func TestReconcileRepoInsertSetsRevPlaceholder(t *testing.T) {
	path := writeDoc(t, "repos: []\n")
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	_, err = ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/tool",
		Hooks: []Hook{{ID: "mytool"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rev: ""`)
}

func TestReconcileRepoBlankLineContract(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/example/black
    rev: v1.0.0
    hooks:
      - id: black
  - repo: https://github.com/example/taplo
    rev: v2.0.0
    hooks:
      - id: taplo
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)
	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/cspell",
		Hooks: []Hook{{ID: "cspell"}},
	})
	require.NoError(t, err)
	require.NotNil(t, corr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// the entry following the insertion gets a blank line before it
	assert.Contains(t, string(data), "\n\n  - repo: https://github.com/example/taplo")
}

func TestReconcileRepoAppendBlankLineBeforeNewLastEntry(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/example/black
    rev: v1.0.0
    hooks:
      - id: black
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)
	_, err = ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/zz-tool",
		Hooks: []Hook{{ID: "zz-tool"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n\n  - repo: https://github.com/example/zz-tool")
}

func TestReconcileRepoEquivalenceIgnoresRev(t *testing.T) {
	content := `repos:
  - repo: https://github.com/example/tool
    rev: v1.0.0
    hooks:
      - id: h
`
	path := writeDoc(t, content)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/tool",
		Hooks: []Hook{{ID: "h"}},
	})
	require.NoError(t, err)
	assert.Nil(t, corr, "entries differing only in rev are equivalent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data), "no rewrite on equivalence")
}

func TestReconcileRepoUpdatePreservesVersionPin(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/example/tool
    rev: v1.2.3
    hooks:
      - id: h
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/tool",
		Hooks: []Hook{{ID: "h", Name: "renamed"}},
	})
	require.NoError(t, err)
	require.NotNil(t, corr)
	assert.Equal(t, ActionUpdated, corr.Action)

	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "v1.2.3", cfg.Repos[0].Rev)
	assert.Equal(t, "renamed", cfg.Repos[0].Hooks[0].Name)
}

func TestReconcileRepoUpdateDetectsUnknownExistingFields(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/example/tool
    rev: v1.2.3
    hooks:
      - id: h
        stages: [commit]
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	corr, err := ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/example/tool",
		Hooks: []Hook{{ID: "h"}},
	})
	require.NoError(t, err)
	require.NotNil(t, corr, "extra fields on disk count as a difference")
	assert.Equal(t, ActionUpdated, corr.Action)
}

func TestReconcileRepoMatchesURLBySearch(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: git@github.com:example/tool.git
    rev: v1.0.0
    hooks:
      - id: h
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	// substring/regex search finds the historical URL spelling, but the
	// repo field itself takes part in the comparison: the entry is
	// rewritten with the expected spelling rather than duplicated.
	expected := Repo{
		Repo:  "example/tool",
		Hooks: []Hook{{ID: "h"}},
	}
	corr, err := ReconcileRepo(doc, expected)
	require.NoError(t, err)
	require.NotNil(t, corr)
	assert.Equal(t, ActionUpdated, corr.Action)

	doc, err = LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.RepoCount())

	corr, err = ReconcileRepo(doc, expected)
	require.NoError(t, err)
	assert.Nil(t, corr, "second run converges")
}

func TestReconcileRepoIdempotence(t *testing.T) {
	path := writeDoc(t, "repos: []\n")
	expected := Repo{
		Repo:  "example/tool",
		Hooks: []Hook{{ID: "mytool"}},
	}

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	corr, err := ReconcileRepo(doc, expected)
	require.NoError(t, err)
	require.NotNil(t, corr)
	assert.Equal(t, ActionAdded, corr.Action)

	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "example/tool", cfg.Repos[0].Repo)
	assert.Equal(t, "", cfg.Repos[0].Rev)
	assert.Equal(t, "mytool", cfg.Repos[0].Hooks[0].ID)

	// second run against the identical descriptor converges to a no-op
	doc, err = LoadDocument(path)
	require.NoError(t, err)
	corr, err = ReconcileRepo(doc, expected)
	require.NoError(t, err)
	assert.Nil(t, corr)
}

func TestReconcileRepoMissingReposSection(t *testing.T) {
	path := writeDoc(t, "files: '^src/'\n")
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	_, err = ReconcileRepo(doc, Repo{Repo: "x", Hooks: []Hook{{ID: "h"}}})
	assert.Error(t, err)
}

func TestReconcileHookSilentWhenRepoAbsent(t *testing.T) {
	content := "repos: []\n"
	path := writeDoc(t, content)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	corr, err := ReconcileHook(doc, "https://github.com/nbQA-dev/nbQA", Hook{ID: "nbqa-black"})
	require.NoError(t, err)
	assert.Nil(t, corr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestReconcileHookInsertsAlphabetically(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/nbQA-dev/nbQA
    rev: v1.3.1
    hooks:
      - id: nbqa-black
      - id: nbqa-pyupgrade
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	corr, err := ReconcileHook(doc, "nbQA", Hook{ID: "nbqa-isort"})
	require.NoError(t, err)
	require.NotNil(t, corr)
	assert.Equal(t, ActionAdded, corr.Action)

	cfg := reloadConfig(t, path)
	require.Len(t, cfg.Repos[0].Hooks, 3)
	assert.Equal(t, "nbqa-black", cfg.Repos[0].Hooks[0].ID)
	assert.Equal(t, "nbqa-isort", cfg.Repos[0].Hooks[1].ID)
	assert.Equal(t, "nbqa-pyupgrade", cfg.Repos[0].Hooks[2].ID)
}

func TestReconcileHookUpdatesChangedDefinition(t *testing.T) {
	path := writeDoc(t, `repos:
  - repo: https://github.com/nbQA-dev/nbQA
    rev: v1.3.1
    hooks:
      - id: nbqa-black
`)
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	expected := Hook{ID: "nbqa-black", AdditionalDependencies: []string{"black>=22.1.0"}}
	corr, err := ReconcileHook(doc, "nbQA", expected)
	require.NoError(t, err)
	require.NotNil(t, corr)
	assert.Equal(t, ActionUpdated, corr.Action)

	cfg := reloadConfig(t, path)
	assert.Equal(t, []string{"black>=22.1.0"}, cfg.Repos[0].Hooks[0].AdditionalDependencies)
	assert.Equal(t, "v1.3.1", cfg.Repos[0].Rev, "repo rev untouched by hook updates")

	// and converges
	doc, err = LoadDocument(path)
	require.NoError(t, err)
	corr, err = ReconcileHook(doc, "nbQA", expected)
	require.NoError(t, err)
	assert.Nil(t, corr)
}

func TestMultilineExcludeSurvivesRoundTrip(t *testing.T) {
	path := writeDoc(t, "repos: []\n")
	doc, err := LoadDocument(path)
	require.NoError(t, err)

	exclude := "(?x)^(\n  .*\\.gen\\.go\n)$"
	_, err = ReconcileRepo(doc, Repo{
		Repo:  "https://github.com/editorconfig-checker/editorconfig-checker",
		Hooks: []Hook{{ID: "editorconfig-checker", Name: "editorconfig", Alias: "ec", Exclude: exclude}},
	})
	require.NoError(t, err)

	cfg := reloadConfig(t, path)
	assert.Equal(t, exclude, strings.TrimRight(cfg.Repos[0].Hooks[0].Exclude, "\n"))
}
