package precommit

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// ErrNotFound is returned by LoadDocument when the config file is absent.
// Callers gate on file existence; the document model never creates files.
var ErrNotFound = errors.New("pre-commit config not found")

// Document is an editable, comment-preserving view of a pre-commit
// configuration file. Comments, key order and scalar quoting survive a
// load/save round trip on untouched nodes; blank lines separating top-level
// repo entries are tracked explicitly and re-applied on save.
type Document struct {
	path        string
	root        *yaml.Node
	blankBefore map[int]bool
}

// LoadDocument parses the configuration file at path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by checker within project root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("parsing %s: empty document", path)
	}

	d := &Document{path: path, root: &root, blankBefore: map[int]bool{}}
	d.detectBlankLines(data)
	return d, nil
}

// Path returns the on-disk location backing this document.
func (d *Document) Path() string {
	return d.path
}

func (d *Document) mapping() *yaml.Node {
	if m := d.root.Content[0]; m.Kind == yaml.MappingNode {
		return m
	}
	return nil
}

// Section returns the value node of a top-level key.
func (d *Document) Section(name string) (*yaml.Node, bool) {
	m := d.mapping()
	if m == nil {
		return nil, false
	}
	v := mappingValue(m, name)
	return v, v != nil
}

// SetSection replaces the value of a top-level key, appending the key when
// it does not exist yet.
func (d *Document) SetSection(name string, value *yaml.Node) {
	m := d.mapping()
	if m == nil {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == name {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
		value,
	)
}

// Repos returns the top-level repos sequence node, or nil when absent.
func (d *Document) Repos() *yaml.Node {
	m := d.mapping()
	if m == nil {
		return nil
	}
	seq := mappingValue(m, "repos")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	return seq
}

// RepoCount returns the number of top-level repo entries.
func (d *Document) RepoCount() int {
	if seq := d.Repos(); seq != nil {
		return len(seq.Content)
	}
	return 0
}

// Repo returns the i-th repo entry node.
func (d *Document) Repo(i int) *yaml.Node {
	seq := d.Repos()
	if seq == nil || i < 0 || i >= len(seq.Content) {
		return nil
	}
	return seq.Content[i]
}

// InsertRepo inserts a repo entry at index i, shifting later entries and
// their blank-line directives.
func (d *Document) InsertRepo(i int, entry *yaml.Node) {
	seq := d.Repos()
	if seq == nil {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(seq.Content) {
		i = len(seq.Content)
	}
	seq.Content = append(seq.Content[:i], append([]*yaml.Node{entry}, seq.Content[i:]...)...)
	seq.Style = 0 // an empty list is decoded flow-style; entries render block-style

	shifted := make(map[int]bool, len(d.blankBefore))
	for idx, v := range d.blankBefore {
		if idx >= i {
			shifted[idx+1] = v
		} else {
			shifted[idx] = v
		}
	}
	d.blankBefore = shifted
}

// ReplaceRepo swaps the repo entry at index i.
func (d *Document) ReplaceRepo(i int, entry *yaml.Node) {
	seq := d.Repos()
	if seq == nil || i < 0 || i >= len(seq.Content) {
		return
	}
	seq.Content[i] = entry
}

// SetBlankLineBefore marks the i-th repo entry as separated from its
// predecessor by one blank line. Out-of-range indices are ignored on save.
func (d *Document) SetBlankLineBefore(i int) {
	d.blankBefore[i] = true
}

// HasBlankLineBefore reports whether the i-th repo entry carries the
// blank-line directive.
func (d *Document) HasBlankLineBefore(i int) bool {
	return d.blankBefore[i]
}

// Render serializes the document, re-applying blank-line directives.
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root.Content[0]); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", d.path, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", d.path, err)
	}
	return d.applyBlankLines(buf.Bytes()), nil
}

// Save overwrites the backing file, preserving its permissions.
func (d *Document) Save() error {
	data, err := d.Render()
	if err != nil {
		return err
	}
	return safeio.WriteFilePreservePerms(d.path, data)
}

// detectBlankLines records which repo entries were preceded by a blank line
// in the source text, so an edit elsewhere does not collapse them.
func (d *Document) detectBlankLines(data []byte) {
	seq := d.Repos()
	if seq == nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	for i, item := range seq.Content {
		top := item.Line // 1-based first line of the entry
		if hc := item.HeadComment; hc != "" {
			top -= len(strings.Split(hc, "\n"))
		}
		if above := top - 2; above >= 0 && above < len(lines) && strings.TrimSpace(lines[above]) == "" {
			d.blankBefore[i] = true
		}
	}
}

// applyBlankLines inserts one blank line before each flagged repo entry in
// the freshly encoded text, above the entry's head comments.
func (d *Document) applyBlankLines(data []byte) []byte {
	if len(d.blankBefore) == 0 {
		return data
	}
	lines := strings.Split(string(data), "\n")

	start := -1
	for i, ln := range lines {
		if ln == "repos:" || (strings.HasPrefix(ln, "repos:") && strings.TrimSpace(ln[len("repos:"):]) == "") {
			start = i
			break
		}
	}
	if start < 0 {
		return data
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		t := lines[i]
		if strings.TrimSpace(t) != "" && !strings.HasPrefix(t, " ") && !strings.HasPrefix(t, "#") {
			end = i
			break
		}
	}

	itemPrefix := ""
	for i := start + 1; i < end; i++ {
		trimmed := strings.TrimLeft(lines[i], " ")
		if strings.HasPrefix(trimmed, "- ") {
			itemPrefix = lines[i][:len(lines[i])-len(trimmed)] + "- "
			break
		}
	}
	if itemPrefix == "" {
		return data
	}

	out := make([]string, 0, len(lines)+len(d.blankBefore))
	out = append(out, lines[:start+1]...)
	item := -1
	for _, ln := range lines[start+1 : end] {
		if strings.HasPrefix(ln, itemPrefix) {
			item++
			if d.blankBefore[item] {
				insert := len(out)
				for insert > start+1 && strings.HasPrefix(strings.TrimSpace(out[insert-1]), "#") {
					insert--
				}
				if insert > 0 && strings.TrimSpace(out[insert-1]) != "" {
					out = append(out[:insert], append([]string{""}, out[insert:]...)...)
				}
			}
		}
		out = append(out, ln)
	}
	out = append(out, lines[end:]...)
	return []byte(strings.Join(out, "\n"))
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
