package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/platform"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
)

// docCandidates are documentation files linked from the upstream tree
// into a converted library, when present.
var docCandidates = []string{
	"LICENSE-BSD.txt",
	"LICENSE-MIT.txt",
	"LICENSE-Apache.txt",
	"LICENSE-GPL.txt",
	"LICENSE.txt",
	"LICENSE",
	"COPYING",
	"README.txt",
	"README.md",
	"README.markdown",
	"README.rst",
	"README",
}

// convert builds lib/<name> from .libs/<name>: it runs script in the
// upstream tree, scaffolds an empty library from def and links the
// upstream documentation, sources and headers into it. The definition and
// script are stored in lib/<name> so the library can be converted again on
// update.
func (r *Resolver) convert(ctx context.Context, def *manifest.Library, script []byte) (*manifest.Library, error) {
	name := def.Name
	raw := r.RawDir(name)
	dest := r.LibDir(name)

	if len(script) > 0 {
		r.log().Info("converting", "library", name, "script", def.RunScript)
		if err := r.runScript(ctx, def.RunScript, script, raw); err != nil {
			return nil, fmt.Errorf("converting %s: %w", name, err)
		}
	}

	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("removing %s: %w", dest, err)
	}
	res, err := scaffold.StartLibrary(dest, def)
	if err != nil {
		return nil, fmt.Errorf("creating library %s: %w", name, err)
	}
	for _, w := range res.Warnings {
		r.log().Warn(w, "library", name)
	}

	placeholders := []string{
		"README.md",
		"LICENSE.txt",
		filepath.Join("src", name+".c"),
		filepath.Join("include", name+".h"),
	}
	for _, p := range placeholders {
		if err := os.Remove(filepath.Join(dest, p)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing placeholder %s: %w", p, err)
		}
	}

	r.log().Info("linking", "library", name)
	for _, doc := range docCandidates {
		src := filepath.Join(raw, doc)
		if !isFile(src) {
			continue
		}
		if err := platform.Link(src, filepath.Join(dest, doc)); err != nil {
			return nil, fmt.Errorf("linking %s: %w", doc, err)
		}
	}
	for _, s := range def.Source {
		if err := platform.Link(filepath.Join(raw, s), filepath.Join(dest, "src", filepath.Base(s))); err != nil {
			return nil, fmt.Errorf("linking source %s: %w", s, err)
		}
	}
	for _, inc := range def.Include {
		if err := platform.Link(filepath.Join(raw, inc), filepath.Join(dest, "include", includePath(inc))); err != nil {
			return nil, fmt.Errorf("linking header %s: %w", inc, err)
		}
	}

	stored := *def
	if def.RunScript != "" {
		stored.RunScript = filepath.Base(def.RunScript)
		if err := os.WriteFile(filepath.Join(dest, stored.RunScript), script, 0755); err != nil {
			return nil, fmt.Errorf("storing conversion script: %w", err)
		}
	}
	if err := manifest.Save(filepath.Join(dest, manifest.FileName), &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// runScript writes script to a temporary file named after the original
// and runs it with workDir as its working directory.
func (r *Resolver) runScript(ctx context.Context, name string, script []byte, workDir string) error {
	if r.Converter == nil {
		return fmt.Errorf("no converter configured")
	}
	tmp, err := os.MkdirTemp("", "convert-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	path := filepath.Join(tmp, filepath.Base(name))
	if err := os.WriteFile(path, script, 0755); err != nil {
		return err
	}
	return r.Converter.Convert(ctx, path, workDir)
}

// includePath strips a leading include/ (or include\) directory from a
// header path.
func includePath(inc string) string {
	inc = strings.ReplaceAll(inc, "\\", "/")
	inc = strings.TrimPrefix(inc, "include/")
	return filepath.FromSlash(inc)
}
