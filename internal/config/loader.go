package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

// Source records where a key got its value.
type Source struct {
	Kind   SourceKind
	Name   string // default or env variable name
	File   string
	Line   int
	Column int
}

func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

type LoadResult struct {
	Config *Config
	// Sources maps a key path ("theme", "pens.2") to its last writer.
	Sources map[string]Source
	// Files lists every file read, in merge order.
	Files []string
}

// record takes sources from a later writer. A key written again drops what
// earlier writers recorded under it, since lists replace whole.
func (r *LoadResult) record(sources map[string]Source) {
	for key := range sources {
		for old := range r.Sources {
			if strings.HasPrefix(old, key+".") {
				delete(r.Sources, old)
			}
		}
	}
	for key, src := range sources {
		r.Sources[key] = src
	}
}

// sourceOf returns the source of path or of its nearest enclosing key.
func (r *LoadResult) sourceOf(path string) (Source, bool) {
	for path != "" {
		if src, ok := r.Sources[path]; ok {
			return src, true
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return Source{}, false
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "workspace", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path and everything it includes, lays the result over
// the defaults and applies WORKSPACE_* overrides. A missing file yields the
// defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	res := &LoadResult{Sources: map[string]Source{}}

	raw := RawConfig{}
	if _, err := os.Stat(path); err == nil {
		w := &includeWalker{done: map[string]bool{}}
		if err := w.walk(path); err != nil {
			return nil, err
		}
		for _, l := range w.layers {
			raw = raw.merge(l.raw)
			res.record(l.sources)
			res.Files = append(res.Files, l.file)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	res.Config = BuildEffectiveConfig(raw)
	envSources, err := ApplyEnv(res.Config)
	if err != nil {
		return nil, err
	}
	res.record(envSources)

	if err := res.Config.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := res.sourceOf(verr.Path); ok {
				verr.Source = src
			}
		}
		return nil, err
	}
	return res, nil
}

// layer is one parsed file.
type layer struct {
	file    string
	raw     RawConfig
	sources map[string]Source
}

type includeRef struct {
	target string
	at     Source
}

// includeWalker flattens a file and its includes into layers. Includes come
// before the file naming them, so the including file wins on merge. A file
// reached twice is merged once, at its first position.
type includeWalker struct {
	done   map[string]bool
	chain  []string
	layers []layer
}

func (w *includeWalker) walk(path string) error {
	file := canonicalPath(path)
	if slices.Contains(w.chain, file) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(w.chain, " -> "), file)
	}
	if w.done[file] {
		return nil
	}
	w.done[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", file, err)
	}
	l, refs, err := parseLayer(file, data)
	if err != nil {
		return err
	}

	w.chain = append(w.chain, file)
	for _, ref := range refs {
		paths, err := expandInclude(file, ref.target)
		if err != nil {
			return fmt.Errorf("%s: include %q: %w", ref.at.position(), ref.target, err)
		}
		for _, p := range paths {
			if err := w.walk(p); err != nil {
				return err
			}
		}
	}
	w.chain = w.chain[:len(w.chain)-1]

	w.layers = append(w.layers, l)
	return nil
}

func parseLayer(file string, data []byte) (layer, []includeRef, error) {
	l := layer{file: file}
	if err := decodeStrictYAML(data, &l.raw); err != nil {
		return layer{}, nil, fmt.Errorf("%s: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	l.sources = map[string]Source{}
	recordSources(root, file, "", l.sources)

	var refs []includeRef
	for _, key := range l.raw.Include {
		refs = append(refs, includeRef{target: key})
	}
	// Positions come from the node tree; the decoded list keeps the order.
	for i, pos := range includePositions(root, file) {
		if i < len(refs) {
			refs[i].at = pos
		}
	}
	return l, refs, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// recordSources maps every key under node to its position. Sequence items
// get their index as the last path element, so pens.1 points at the second
// pen.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	at := func(n *yaml.Node) Source {
		return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = at(val)
			recordSources(val, file, key, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			key := prefix + "." + strconv.Itoa(i)
			out[key] = at(item)
			recordSources(item, file, key, out)
		}
	}
}

func includePositions(root *yaml.Node, file string) []Source {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		out := make([]Source, 0, len(items))
		for _, n := range items {
			out = append(out, Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column})
		}
		return out
	}
	return nil
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// expandInclude resolves one include entry relative to the including file.
// Entries may use ~ and $VARS. A directory stands for its *.yaml and *.yml
// files; a pattern for its matches. Both expand in lexical order.
func expandInclude(from, target string) ([]string, error) {
	target = strings.TrimSpace(os.ExpandEnv(target))
	if target == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if target == "~" || strings.HasPrefix(target, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		target = filepath.Join(home, strings.TrimPrefix(target, "~"))
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}

	if strings.ContainsAny(target, "*?[") {
		matches, err := filepath.Glob(target)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match")
		}
		slices.Sort(matches)
		return matches, nil
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(target, ent.Name()))
			}
		}
	}
	// ReadDir already returns entries sorted by name.
	return files, nil
}
