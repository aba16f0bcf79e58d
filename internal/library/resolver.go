package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/convert"
	"github.com/esp8266-setup/esp8266-setup/internal/fetch"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/platform"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	// ErrNotFound is returned when a name matches no installed library and
	// no catalog entry.
	ErrNotFound = errors.New("library not found")

	// ErrNotNative is returned when a fetched source has no library.json
	// and no definition was supplied to convert it.
	ErrNotNative = errors.New("not a native library, you will have to supply a library definition")

	// ErrNotInstalled is returned when a library is not present in lib/.
	ErrNotInstalled = errors.New("library is not installed")
)

// NotFoundError reports an unknown library name with close matches.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("unable to find library with name %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

const (
	libDir = "lib"
	rawDir = ".libs"
)

// Resolver resolves references relative to a project root.
type Resolver struct {
	Root      string
	Git       fetch.Fetcher
	Archive   fetch.Fetcher
	Converter convert.Converter
	Catalog   *catalog.Catalog
	Log       *log.Logger
}

// NewResolver returns a resolver for the project at root using the real
// git and archive fetchers.
func NewResolver(root string, cat *catalog.Catalog, conv convert.Converter, logger *log.Logger) *Resolver {
	return &Resolver{
		Root:      root,
		Git:       &fetch.Git{},
		Archive:   fetch.NewArchive(),
		Converter: conv,
		Catalog:   cat,
		Log:       logger,
	}
}

// Option configures a single Resolve call.
type Option func(*resolveOptions)

type resolveOptions struct {
	definition string
}

// WithDefinition supplies a definition file for a fetched source that is
// not a native library.
func WithDefinition(path string) Option {
	return func(o *resolveOptions) {
		o.definition = path
	}
}

// LibDir returns the installed directory of a library.
func (r *Resolver) LibDir(name string) string {
	return filepath.Join(r.Root, libDir, name)
}

// RawDir returns the directory the upstream source of a library is
// fetched into.
func (r *Resolver) RawDir(name string) string {
	return filepath.Join(r.Root, rawDir, name)
}

// IsInstalled reports whether lib/<name>/library.json exists.
func (r *Resolver) IsInstalled(name string) bool {
	return isFile(filepath.Join(r.LibDir(name), manifest.FileName))
}

// Installed loads an installed library by name.
func (r *Resolver) Installed(name string) (*Library, error) {
	if !r.IsInstalled(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	def, err := manifest.Load(filepath.Join(r.LibDir(name), manifest.FileName))
	if err != nil {
		return nil, err
	}
	src, err := sourceOf(def.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Library{Name: name, Definition: def, Source: src, resolver: r}, nil
}

// Resolve turns raw into an installed library, fetching and converting as
// needed.
func (r *Resolver) Resolve(ctx context.Context, raw string, opts ...Option) (*Library, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	ref, err := ParseReference(raw, r.IsInstalled)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case KindInstalled:
		return r.Installed(ref.Name)

	case KindGit, KindArchive:
		src := Source{Kind: ref.Kind, URL: ref.URL, Ref: ref.Ref}
		var explicit *catalog.Entry
		if o.definition != "" {
			if explicit, err = catalog.EntryFromFile(o.definition); err != nil {
				return nil, err
			}
		}
		return r.installFetched(ctx, ref.Name, src, explicit)

	case KindDefinitionFile:
		r.log().Info("importing local library definition", "file", ref.Path)
		entry, err := catalog.EntryFromFile(ref.Path)
		if err != nil {
			return nil, err
		}
		return r.installEntry(ctx, entry)

	default:
		if r.Catalog == nil {
			return nil, &NotFoundError{Name: ref.Name}
		}
		entry, err := r.Catalog.Lookup(ref.Name)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &NotFoundError{Name: ref.Name, Suggestions: r.Catalog.Suggest(ref.Name)}
		}
		if err != nil {
			return nil, err
		}
		r.log().Info("using catalog definition", "library", entry.Name, "source", entry.SourceName)
		return r.installEntry(ctx, entry)
	}
}

// installFetched handles git and archive references. The fetched source
// decides between a native install and a conversion with explicit.
func (r *Resolver) installFetched(ctx context.Context, name string, src Source, explicit *catalog.Entry) (*Library, error) {
	if explicit != nil && explicit.Definition.Name != "" {
		name = explicit.Definition.Name
	}
	if err := r.fetch(ctx, name, src); err != nil {
		return nil, err
	}

	if r.isNative(name) {
		return r.installNative(name, src)
	}
	if explicit == nil && r.IsInstalled(name) {
		// A converted library carries its own definition and script.
		entry, err := catalog.EntryFromFile(filepath.Join(r.LibDir(name), manifest.FileName))
		if err != nil {
			return nil, err
		}
		r.log().Info("using installed definition", "library", name)
		explicit = entry
	}
	if explicit == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotNative)
	}
	return r.installConverted(ctx, explicit, src)
}

// installEntry installs the library a definition describes, fetching it
// from the definition's URL when it is not present yet.
func (r *Resolver) installEntry(ctx context.Context, entry *catalog.Entry) (*Library, error) {
	def := entry.Definition
	src, err := sourceOf(def.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	if r.IsInstalled(def.Name) {
		r.log().Debug("already installed", "library", def.Name)
		return r.Installed(def.Name)
	}
	if err := r.fetch(ctx, def.Name, src); err != nil {
		return nil, err
	}
	if r.isNative(def.Name) {
		return r.installNative(def.Name, src)
	}
	return r.installConverted(ctx, entry, src)
}

// fetch populates .libs/<name>. An existing git checkout is moved to the
// requested ref; other existing trees are reused as they are.
func (r *Resolver) fetch(ctx context.Context, name string, src Source) error {
	dest := r.RawDir(name)
	if isDir(dest) {
		if src.Kind != KindGit || src.Ref == "" {
			r.log().Debug("source already fetched", "library", name, "dir", dest)
			return nil
		}
		f, err := r.fetcher(src)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.log().Info("checking out", "library", name, "ref", src.Ref)
		if err := f.Update(ctx, src.URL, src.Ref, dest); err != nil {
			return fmt.Errorf("fetching %s: %w", name, err)
		}
		return nil
	}
	f, err := r.fetcher(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", rawDir, err)
	}
	r.log().Info("fetching", "library", name, "source", src.Kind, "url", src.URL)
	if err := f.Fetch(ctx, src.URL, src.Ref, dest); err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	return nil
}

func (r *Resolver) fetcher(src Source) (fetch.Fetcher, error) {
	switch src.Kind {
	case KindGit:
		if r.Git == nil {
			return &fetch.Git{}, nil
		}
		return r.Git, nil
	case KindArchive:
		if r.Archive == nil {
			return fetch.NewArchive(), nil
		}
		return r.Archive, nil
	default:
		return nil, errors.New("definition has no git or archive url to fetch from")
	}
}

func (r *Resolver) isNative(name string) bool {
	return isFile(filepath.Join(r.RawDir(name), manifest.FileName))
}

// installNative copies .libs/<name> into lib/<name>.
func (r *Resolver) installNative(name string, src Source) (*Library, error) {
	def, err := manifest.Load(filepath.Join(r.RawDir(name), manifest.FileName))
	if err != nil {
		return nil, err
	}

	dest := r.LibDir(name)
	r.log().Info("installing", "library", name)
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("removing %s: %w", dest, err)
	}
	if err := platform.CopyTree(r.RawDir(name), dest); err != nil {
		return nil, fmt.Errorf("installing %s: %w", name, err)
	}
	return &Library{Name: name, Definition: def, Source: src, resolver: r}, nil
}

// installConverted runs the entry's conversion script, if any, and builds
// lib/<name> from the converted source tree.
func (r *Resolver) installConverted(ctx context.Context, entry *catalog.Entry, src Source) (*Library, error) {
	var script []byte
	if entry.Definition.RunScript != "" {
		var err error
		if script, err = entry.ReadFile(entry.Definition.RunScript); err != nil {
			return nil, err
		}
	}
	def, err := r.convert(ctx, entry.Definition, script)
	if err != nil {
		return nil, err
	}
	return &Library{Name: def.Name, Definition: def, Source: src, resolver: r}, nil
}

func (r *Resolver) log() *log.Logger {
	if r.Log == nil {
		return ui.Discard()
	}
	return r.Log
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
