package pipeline

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// Extension is the definition file extension.
const Extension = ".yaml"

//go:embed definitions/*.yaml
var catalogue embed.FS

// Source looks up pipeline definitions by name.
type Source interface {
	// Lookup returns the named definition, or *UnresolvedDefinitionError
	// when the source has none.
	Lookup(name string) (*Definition, error)
	// Names lists the pipelines the source can resolve, sorted.
	Names() ([]string, error)
}

// FSSource reads <name>.yaml files from the root of an fs.FS.
type FSSource struct {
	FS fs.FS
	// Label identifies the source in messages.
	Label string
}

// Embedded returns the built-in catalogue.
func Embedded() *FSSource {
	sub, err := fs.Sub(catalogue, "definitions")
	if err != nil {
		panic(fmt.Sprintf("embedded definitions: %v", err))
	}
	return &FSSource{FS: sub, Label: "built-in catalogue"}
}

// Dir returns a source reading definitions from dir.
func Dir(dir string) *FSSource {
	return &FSSource{FS: os.DirFS(dir), Label: dir}
}

// Lookup implements Source.
func (s *FSSource) Lookup(name string) (*Definition, error) {
	file := name + Extension
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(file) {
		return nil, &UnresolvedDefinitionError{Pipeline: name, Searched: []string{s.Label}}
	}

	data, err := fs.ReadFile(s.FS, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &UnresolvedDefinitionError{Pipeline: name, Searched: []string{s.location(file)}}
		}
		return nil, fmt.Errorf("reading definition %s: %w", s.location(file), err)
	}
	return Parse(name, s.location(file), data)
}

// Names implements Source.
func (s *FSSource) Names() ([]string, error) {
	entries, err := fs.ReadDir(s.FS, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing definitions in %s: %w", s.Label, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

func (s *FSSource) location(file string) string {
	return path.Join(s.Label, file)
}

// Chain tries each source in order; the first one that resolves a name
// wins.
type Chain []Source

// Lookup implements Source.
func (c Chain) Lookup(name string) (*Definition, error) {
	unresolved := &UnresolvedDefinitionError{Pipeline: name}
	for _, src := range c {
		def, err := src.Lookup(name)
		if err == nil {
			return def, nil
		}
		var u *UnresolvedDefinitionError
		if !errors.As(err, &u) {
			return nil, err
		}
		unresolved.Searched = append(unresolved.Searched, u.Searched...)
	}
	return nil, unresolved
}

// Names implements Source.
func (c Chain) Names() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, src := range c {
		n, err := src.Names()
		if err != nil {
			return nil, err
		}
		for _, name := range n {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
