package precommit

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Action describes what a reconciliation did to the document.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
)

// Correction reports a reconciliation that rewrote the document. It is a
// plain result value: callers decide whether to treat it as a failing
// outcome, the engine never signals success through the error channel.
type Correction struct {
	Action  Action
	HookID  string
	Path    string
	Message string
}

// caseless orders hook ids case-insensitively.
var caseless = collate.New(language.Und, collate.IgnoreCase)

// ReconcileRepo reconciles one single-hook repo entry against its expected
// definition. A nil Correction means the document already matched.
//
// A missing entry is inserted alphabetically by hook id among existing
// single-hook entries (multi-hook entries are hand-curated and never used
// as sort anchors) with a double-quoted empty rev placeholder, so that a
// later `pre-commit autoupdate` can pin it. An existing entry that differs
// in any field other than rev is replaced, keeping its rev pin.
func ReconcileRepo(doc *Document, expected Repo) (*Correction, error) {
	if len(expected.Hooks) == 0 {
		return nil, fmt.Errorf("expected repo %s defines no hooks", expected.Repo)
	}
	if doc.Repos() == nil {
		return nil, fmt.Errorf("%s has no repos section", doc.Path())
	}
	hookID := expected.Hooks[0].ID

	idx := findRepoIndex(doc, expected.Repo)
	if idx < 0 {
		entry, err := encodeRepo(expected)
		if err != nil {
			return nil, err
		}
		i := insertionIndex(doc, hookID)
		doc.InsertRepo(i, entry)
		if i+1 == doc.RepoCount() {
			doc.SetBlankLineBefore(i)
		} else {
			doc.SetBlankLineBefore(i + 1)
		}
		if err := doc.Save(); err != nil {
			return nil, err
		}
		return &Correction{
			Action: ActionAdded,
			HookID: hookID,
			Path:   doc.Path(),
			Message: fmt.Sprintf(
				"Added %s hook to %s. Run 'pre-commit autoupdate --repo %s' to pin the latest release",
				hookID, doc.Path(), expected.Repo),
		}, nil
	}

	existing := doc.Repo(idx)
	equal, err := equivalentIgnoringRev(existing, expected)
	if err != nil {
		return nil, err
	}
	if equal {
		return nil, nil
	}

	expected.Rev = scalarValue(existing, "rev")
	entry, err := encodeRepo(expected)
	if err != nil {
		return nil, err
	}
	doc.ReplaceRepo(idx, entry)
	doc.SetBlankLineBefore(idx + 1)
	if err := doc.Save(); err != nil {
		return nil, err
	}
	return &Correction{
		Action:  ActionUpdated,
		HookID:  hookID,
		Path:    doc.Path(),
		Message: fmt.Sprintf("Updated %s hook in %s", hookID, doc.Path()),
	}, nil
}

// ReconcileHook reconciles one hook definition inside an already-listed
// repo entry. When the repo entry itself is absent this is a silent no-op:
// hook-level policies never create a missing repo.
func ReconcileHook(doc *Document, repoURL string, expected Hook) (*Correction, error) {
	repoIdx := findRepoIndex(doc, repoURL)
	if repoIdx < 0 {
		return nil, nil
	}
	repoNode := doc.Repo(repoIdx)
	hooks := mappingValue(repoNode, "hooks")
	if hooks == nil || hooks.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("repo %s in %s has no hooks list", repoURL, doc.Path())
	}
	repoName := repoURL[strings.LastIndex(repoURL, "/")+1:]

	hookIdx := -1
	for i, hook := range hooks.Content {
		if scalarValue(hook, "id") == expected.ID {
			hookIdx = i
			break
		}
	}

	if hookIdx < 0 {
		entry := &yaml.Node{}
		if err := entry.Encode(expected); err != nil {
			return nil, fmt.Errorf("encoding hook %s: %w", expected.ID, err)
		}
		blockMultilineExclude(entry)
		i := len(hooks.Content)
		for j, hook := range hooks.Content {
			if caseless.CompareString(scalarValue(hook, "id"), expected.ID) > 0 {
				i = j
				break
			}
		}
		hooks.Content = append(hooks.Content[:i], append([]*yaml.Node{entry}, hooks.Content[i:]...)...)
		if i == len(hooks.Content)-1 {
			doc.SetBlankLineBefore(repoIdx + 1)
		}
		if err := doc.Save(); err != nil {
			return nil, err
		}
		return &Correction{
			Action:  ActionAdded,
			HookID:  expected.ID,
			Path:    doc.Path(),
			Message: fmt.Sprintf("Added %q hook to %s in %s", expected.ID, repoName, doc.Path()),
		}, nil
	}

	equal, err := nodeEqualsValue(hooks.Content[hookIdx], expected)
	if err != nil {
		return nil, err
	}
	if equal {
		return nil, nil
	}
	entry := &yaml.Node{}
	if err := entry.Encode(expected); err != nil {
		return nil, fmt.Errorf("encoding hook %s: %w", expected.ID, err)
	}
	blockMultilineExclude(entry)
	hooks.Content[hookIdx] = entry
	if err := doc.Save(); err != nil {
		return nil, err
	}
	return &Correction{
		Action:  ActionUpdated,
		HookID:  expected.ID,
		Path:    doc.Path(),
		Message: fmt.Sprintf("Updated %q hook of %s in %s", expected.ID, repoName, doc.Path()),
	}, nil
}

// findRepoIndex locates the first repo entry whose URL matches the pattern
// via regex search. The first occurrence is authoritative.
func findRepoIndex(doc *Document, pattern string) int {
	re := regexp.MustCompile(pattern)
	seq := doc.Repos()
	if seq == nil {
		return -1
	}
	for i, entry := range seq.Content {
		if re.MatchString(scalarValue(entry, "repo")) {
			return i
		}
	}
	return -1
}

// insertionIndex picks where a new single-hook entry keeps the repo list
// alphabetic by hook id. Entries with more than one hook are skipped: their
// position is hand-curated.
func insertionIndex(doc *Document, hookID string) int {
	seq := doc.Repos()
	for i, entry := range seq.Content {
		hooks := mappingValue(entry, "hooks")
		if hooks == nil || hooks.Kind != yaml.SequenceNode || len(hooks.Content) != 1 {
			continue
		}
		if caseless.CompareString(hookID, scalarValue(hooks.Content[0], "id")) <= 0 {
			return i
		}
	}
	return len(seq.Content)
}

// encodeRepo converts a descriptor to a mapping node, inserting an explicit
// double-quoted empty rev placeholder when no pin is set.
func encodeRepo(r Repo) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding repo %s: %w", r.Repo, err)
	}
	if mappingValue(node, "rev") == nil && len(node.Content) >= 2 {
		placeholder := []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "rev"},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "", Style: yaml.DoubleQuotedStyle},
		}
		node.Content = append(node.Content[:2], append(placeholder, node.Content[2:]...)...)
	}
	if hooks := mappingValue(node, "hooks"); hooks != nil {
		for _, hook := range hooks.Content {
			blockMultilineExclude(hook)
		}
	}
	return node, nil
}

// blockMultilineExclude renders multi-line exclude regexes as literal block
// scalars, the conventional layout for (?x) extended patterns. Literal style
// keeps the newlines intact on reload, so reconciliation stays convergent.
func blockMultilineExclude(hook *yaml.Node) {
	if hook.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(hook.Content); i += 2 {
		if hook.Content[i].Value == "exclude" && strings.Contains(hook.Content[i+1].Value, "\n") {
			hook.Content[i+1].Style = yaml.LiteralStyle
		}
	}
}

// equivalentIgnoringRev compares an existing entry node against an expected
// descriptor, ignoring exclusively the rev field. The existing entry is
// compared as a generic map so fields unknown to the descriptor still count
// as differences.
func equivalentIgnoringRev(existing *yaml.Node, expected Repo) (bool, error) {
	var existingMap map[string]interface{}
	if err := existing.Decode(&existingMap); err != nil {
		return false, fmt.Errorf("decoding existing entry: %w", err)
	}
	expectedMap, err := toGenericMap(expected)
	if err != nil {
		return false, err
	}
	delete(existingMap, "rev")
	delete(expectedMap, "rev")
	return reflect.DeepEqual(existingMap, expectedMap), nil
}

// nodeEqualsValue compares a node against a descriptor structurally.
func nodeEqualsValue(node *yaml.Node, value interface{}) (bool, error) {
	var existingMap map[string]interface{}
	if err := node.Decode(&existingMap); err != nil {
		return false, fmt.Errorf("decoding existing entry: %w", err)
	}
	expectedMap, err := toGenericMap(value)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(existingMap, expectedMap), nil
}

// toGenericMap round-trips a descriptor through YAML so both sides of a
// comparison use identical generic types.
func toGenericMap(value interface{}) (map[string]interface{}, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling expected entry: %w", err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling expected entry: %w", err)
	}
	return m, nil
}

// scalarValue returns the string value of a mapping key, or "".
func scalarValue(mapNode *yaml.Node, key string) string {
	if mapNode == nil || mapNode.Kind != yaml.MappingNode {
		return ""
	}
	if v := mappingValue(mapNode, key); v != nil {
		return v.Value
	}
	return ""
}
