package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
)

//go:embed libs
var bundledFS embed.FS

// ErrNotFound is returned when no source holds a definition for a name.
var ErrNotFound = errors.New("library definition not found")

// maxSuggestions caps the "did you mean" list.
const maxSuggestions = 3

var validName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Source is a directory of <name>.json definitions plus any conversion
// scripts they reference.
type Source struct {
	Name string
	FS   fs.FS
}

// Entry is a definition found in a source.
type Entry struct {
	Name       string
	SourceName string
	// FS and Dir locate the definition's directory, against which its
	// run_script is resolved.
	FS         fs.FS
	Dir        string
	Definition *manifest.Library
}

// ReadFile reads a file relative to the entry's directory.
func (e *Entry) ReadFile(rel string) ([]byte, error) {
	data, err := fs.ReadFile(e.FS, path.Join(e.Dir, filepath.ToSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", rel, e.SourceName, err)
	}
	return data, nil
}

// Catalog searches its sources in order.
type Catalog struct {
	sources []Source
}

// New creates a catalog over sources, highest priority first.
func New(sources ...Source) *Catalog {
	return &Catalog{sources: sources}
}

// Bundled returns the source embedded in the binary.
func Bundled() Source {
	sub, err := fs.Sub(bundledFS, "libs")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded libs missing: %v", err))
	}
	return Source{Name: "bundled", FS: sub}
}

// DirSource returns a source reading from a directory on disk.
func DirSource(name, dir string) Source {
	return Source{Name: name, FS: os.DirFS(dir)}
}

// Default returns the standard catalog: userDir (if set), the synced
// repository's libs/ directory (if present) and the bundled definitions.
func Default(userDir, repoDir string) *Catalog {
	var sources []Source
	if userDir != "" {
		sources = append(sources, DirSource("user", userDir))
	}
	if repoDir != "" {
		libs := filepath.Join(repoDir, "libs")
		if info, err := os.Stat(libs); err == nil && info.IsDir() {
			sources = append(sources, DirSource("catalog repository", libs))
		}
	}
	sources = append(sources, Bundled())
	return New(sources...)
}

// Sources returns the catalog's sources in priority order.
func (c *Catalog) Sources() []Source {
	return c.sources
}

// Lookup returns the first definition named name. Definitions that exist
// but fail validation are reported instead of being skipped.
func (c *Catalog) Lookup(name string) (*Entry, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	for _, src := range c.sources {
		file := name + ".json"
		data, err := fs.ReadFile(src.FS, file)
		if err != nil {
			continue // not in this source
		}
		def, err := manifest.Parse(data, src.Name+": "+file)
		if err != nil {
			return nil, err
		}
		return &Entry{
			Name:       def.Name,
			SourceName: src.Name,
			FS:         src.FS,
			Dir:        ".",
			Definition: def,
		}, nil
	}

	return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Names returns the names of every definition across all sources, sorted
// and without duplicates.
func (c *Catalog) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, src := range c.sources {
		matches, err := fs.Glob(src.FS, "*.json")
		if err != nil {
			continue
		}
		for _, m := range matches {
			n := m[:len(m)-len(".json")]
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// List returns the winning entry for every name. Invalid definitions are
// skipped and returned as errors.
func (c *Catalog) List() ([]*Entry, []error) {
	var (
		entries []*Entry
		errs    []error
	)
	for _, n := range c.Names() {
		e, err := c.Lookup(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, errs
}

// Suggest returns up to three known names close to name: names that
// fuzzy-match it, then names contained in it as a subsequence.
func (c *Catalog) Suggest(name string) []string {
	names := c.Names()
	var out []string
	seen := map[string]bool{}
	add := func(n string) {
		if len(out) < maxSuggestions && !seen[n] && n != name {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, m := range fuzzy.Find(name, names) {
		add(m.Str)
	}
	for _, n := range names {
		if len(fuzzy.Find(n, []string{name})) > 0 {
			add(n)
		}
	}
	return out
}

// EntryFromFile loads a definition file from disk as an entry whose
// directory is the file's directory.
func EntryFromFile(file string) (*Entry, error) {
	def, err := manifest.Load(file)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", file, err)
	}
	return &Entry{
		Name:       def.Name,
		SourceName: file,
		FS:         os.DirFS(abs),
		Dir:        ".",
		Definition: def,
	}, nil
}
