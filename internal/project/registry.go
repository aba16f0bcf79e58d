package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/esp8266-setup/esp8266-setup/internal/library"
	"github.com/esp8266-setup/esp8266-setup/internal/makefile"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

// ErrNotProject is returned when the root has no Makefile.
var ErrNotProject = scaffold.ErrNotProject

// Registry is the set of libraries installed in a project.
type Registry struct {
	Resolver *library.Resolver
	Log      *log.Logger
}

// New returns the registry of the project the resolver is rooted at.
func New(resolver *library.Resolver, logger *log.Logger) *Registry {
	return &Registry{Resolver: resolver, Log: logger}
}

// AddOptions configures Add.
type AddOptions struct {
	// Definition is a definition file for a non-native git or archive
	// reference.
	Definition string
	// NoDeps skips installing the library's declared dependencies.
	NoDeps bool
}

// AddResult describes what Add installed.
type AddResult struct {
	Library      *library.Library
	Dependencies []*library.Library
	Warnings     []string
}

// UpdateResult describes an updated library.
type UpdateResult struct {
	Library    *library.Library
	OldVersion string
	NewVersion string
}

// Change compares the versions before and after the update: -1 for a
// downgrade, 1 for an upgrade and 0 when they are equal or either one is
// not a semantic version.
func (u *UpdateResult) Change() int {
	c, err := manifest.CompareVersions(u.NewVersion, u.OldVersion)
	if err != nil {
		return 0
	}
	return c
}

// Summary is the listing form of an installed library.
type Summary struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Kind    string `json:"kind"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

func (p *Registry) root() string {
	return p.Resolver.Root
}

func (p *Registry) makefilePath() string {
	return filepath.Join(p.root(), "Makefile")
}

func (p *Registry) check() error {
	info, err := os.Stat(p.makefilePath())
	if err != nil || info.IsDir() {
		return ErrNotProject
	}
	return nil
}

func (p *Registry) log() *log.Logger {
	if p.Log == nil {
		return ui.Discard()
	}
	return p.Log
}

// Installed returns the libraries under lib/ in directory order.
// Directories that do not load are logged and skipped.
func (p *Registry) Installed(ctx context.Context) ([]*library.Library, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return p.installed(ctx)
}

func (p *Registry) installed(ctx context.Context) ([]*library.Library, error) {
	entries, err := os.ReadDir(filepath.Join(p.root(), "lib"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lib: %w", err)
	}

	var libs []*library.Library
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		lib, err := p.Resolver.Installed(e.Name())
		if err != nil {
			p.log().Warn("invalid library, skipping", "dir", filepath.Join("lib", e.Name()), "err", err)
			continue
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// List summarizes the installed libraries.
func (p *Registry) List(ctx context.Context) ([]Summary, error) {
	libs, err := p.Installed(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(libs))
	for _, l := range libs {
		out = append(out, Summary{
			Name:    l.Name,
			Version: l.Version(),
			Kind:    l.Kind(),
			Source:  l.SourceType(),
			URL:     l.Definition.URL,
		})
	}
	return out, nil
}

// Add resolves ref, installs it and, unless opts.NoDeps is set, its
// dependencies. The Makefile is only rewritten once ref resolved;
// dependencies that fail are reported as warnings.
func (p *Registry) Add(ctx context.Context, ref string, opts AddOptions) (*AddResult, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	libs, err := p.installed(ctx)
	if err != nil {
		return nil, err
	}

	var resolveOpts []library.Option
	if opts.Definition != "" {
		resolveOpts = append(resolveOpts, library.WithDefinition(opts.Definition))
	}
	lib, err := p.Resolver.Resolve(ctx, ref, resolveOpts...)
	if err != nil {
		return nil, err
	}
	libs = replace(libs, lib)
	result := &AddResult{Library: lib}

	if !opts.NoDeps {
		libs = p.addDependencies(ctx, libs, lib, result)
	}

	if err := p.rewrite(libs); err != nil {
		return nil, err
	}
	return result, nil
}

// addDependencies installs the missing dependencies of lib, breadth first.
func (p *Registry) addDependencies(ctx context.Context, libs []*library.Library, lib *library.Library, result *AddResult) []*library.Library {
	queue := append([]string(nil), lib.Definition.Dependencies...)
	seen := map[string]bool{lib.Name: true}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		if find(libs, name) != nil {
			continue
		}

		dep, err := p.Resolver.Resolve(ctx, name)
		if err != nil {
			msg := fmt.Sprintf("could not install dependency %s of %s: %v", name, lib.Name, err)
			p.log().Warn(msg)
			result.Warnings = append(result.Warnings, msg)
			continue
		}
		libs = replace(libs, dep)
		result.Dependencies = append(result.Dependencies, dep)
		queue = append(queue, dep.Definition.Dependencies...)
	}
	return libs
}

// Remove deletes the installed library name.
func (p *Registry) Remove(ctx context.Context, name string) error {
	if err := p.check(); err != nil {
		return err
	}
	libs, err := p.installed(ctx)
	if err != nil {
		return err
	}

	lib := find(libs, name)
	if lib == nil {
		return fmt.Errorf("can not find library with name %s: %w", name, library.ErrNotInstalled)
	}
	if err := lib.Remove(); err != nil {
		return err
	}

	remaining := make([]*library.Library, 0, len(libs)-1)
	for _, l := range libs {
		if l != lib {
			remaining = append(remaining, l)
		}
	}
	return p.rewrite(remaining)
}

// Update resolves ref, refreshes it from upstream and rewrites the
// Makefile.
func (p *Registry) Update(ctx context.Context, ref string) (*UpdateResult, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	libs, err := p.installed(ctx)
	if err != nil {
		return nil, err
	}

	lib, err := p.Resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	old := lib.Version()
	if err := lib.Update(ctx); err != nil {
		return nil, err
	}

	libs = replace(libs, lib)
	if err := p.rewrite(libs); err != nil {
		return nil, err
	}
	return &UpdateResult{Library: lib, OldVersion: old, NewVersion: lib.Version()}, nil
}

// rewrite sets SRC_LIBS to the names of libs.
func (p *Registry) rewrite(libs []*library.Library) error {
	names := make([]string, 0, len(libs))
	for _, l := range libs {
		names = append(names, l.Name)
	}
	return makefile.Rewrite(p.makefilePath(), func(text string) (string, error) {
		return makefile.Set(text, makefile.SrcLibs, strings.Join(names, " "))
	})
}

func find(libs []*library.Library, name string) *library.Library {
	for _, l := range libs {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// replace swaps the library named like lib for lib, or appends it.
func replace(libs []*library.Library, lib *library.Library) []*library.Library {
	for i, l := range libs {
		if l.Name == lib.Name {
			libs[i] = lib
			return libs
		}
	}
	return append(libs, lib)
}
