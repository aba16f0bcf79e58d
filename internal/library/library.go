package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/platform"
)

// Library is an installed library.
type Library struct {
	Name       string
	Definition *manifest.Library
	Source     Source

	resolver *Resolver
}

// Dir returns lib/<name>.
func (l *Library) Dir() string {
	return l.resolver.LibDir(l.Name)
}

// Converted reports whether the library was converted from a foreign
// layout, that is whether its upstream tree has no library.json.
func (l *Library) Converted() bool {
	return !l.resolver.isNative(l.Name)
}

// SourceType returns "git", "archive download" or "local".
func (l *Library) SourceType() string {
	return l.Source.String()
}

// Kind returns "imported" for converted libraries and "native" otherwise.
func (l *Library) Kind() string {
	if l.Converted() {
		return "imported"
	}
	return "native"
}

// Version returns the definition's version, or "".
func (l *Library) Version() string {
	if l.Definition == nil {
		return ""
	}
	return l.Definition.Version
}

// Update refreshes the upstream tree and rebuilds lib/<name> from it.
// Local libraries without a fetchable source are only rebuilt.
func (l *Library) Update(ctx context.Context) error {
	r := l.resolver
	raw := r.RawDir(l.Name)

	if l.Source.Kind == KindGit || l.Source.Kind == KindArchive {
		f, err := r.fetcher(l.Source)
		if err != nil {
			return err
		}
		r.log().Info("updating", "library", l.Name, "url", l.Source.URL)
		if isDir(raw) {
			err = f.Update(ctx, l.Source.URL, l.Source.Ref, raw)
		} else {
			err = f.Fetch(ctx, l.Source.URL, l.Source.Ref, raw)
		}
		if err != nil {
			return fmt.Errorf("updating %s: %w", l.Name, err)
		}
	}
	if !isDir(raw) {
		return fmt.Errorf("%s: upstream source %s is missing", l.Name, raw)
	}

	if l.Converted() {
		return l.reconvert(ctx)
	}

	dest := l.Dir()
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("removing %s: %w", dest, err)
	}
	if err := platform.CopyTree(raw, dest); err != nil {
		return fmt.Errorf("installing %s: %w", l.Name, err)
	}
	return l.reload()
}

// reconvert runs the stored conversion script against the refreshed
// upstream tree. The script is read before lib/<name> is discarded.
func (l *Library) reconvert(ctx context.Context) error {
	def := *l.Definition
	var script []byte
	if def.RunScript != "" {
		var err error
		script, err = os.ReadFile(filepath.Join(l.Dir(), def.RunScript))
		if err != nil {
			return fmt.Errorf("reading stored conversion script: %w", err)
		}
	}
	stored, err := l.resolver.convert(ctx, &def, script)
	if err != nil {
		return err
	}
	l.Definition = stored
	return nil
}

func (l *Library) reload() error {
	def, err := manifest.Load(filepath.Join(l.Dir(), manifest.FileName))
	if err != nil {
		return err
	}
	l.Definition = def
	return nil
}

// Remove deletes lib/<name> and .libs/<name>. Missing directories are not
// an error.
func (l *Library) Remove() error {
	r := l.resolver
	r.log().Info("removing", "library", l.Name)
	for _, dir := range []string{r.LibDir(l.Name), r.RawDir(l.Name)} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}
	return nil
}
