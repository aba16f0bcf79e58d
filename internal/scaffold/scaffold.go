package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esp8266-setup/esp8266-setup/internal/makefile"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
)

var (
	// ErrDestinationExists is returned when the target of a start command
	// already exists.
	ErrDestinationExists = errors.New("destination already exists, please use a different name or remove the file or directory")

	// ErrNotProject is returned when a directory has no Makefile.
	ErrNotProject = errors.New("not a project directory, enter the project directory first")

	// ErrNotLibrary is returned when a directory has no library.json.
	ErrNotLibrary = errors.New("not a library directory, enter the library directory first")
)

// unknownURL is written into a library README when no URL is known.
const unknownURL = "<unknown URL>"

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// ProjectOptions configures a new project.
type ProjectOptions struct {
	FlashLayout string   // defaults to makefile.DefaultFlashLayout
	SDKLibs     []string // SDK libraries to link with
}

// StartProject creates a new project at dest, which must not exist.
func StartProject(dest string, opts ProjectOptions) (*Result, error) {
	name := filepath.Base(filepath.Clean(dest))
	layout := opts.FlashLayout
	if layout == "" {
		layout = makefile.DefaultFlashLayout
	}

	// Render the Makefile before touching the filesystem so a bad flash
	// layout leaves nothing behind.
	mk, err := readTemplate("project.mk")
	if err != nil {
		return nil, err
	}
	mk, err = makefile.ApplyProject(mk, makefile.ProjectSettings{
		Name:        &name,
		FlashLayout: &layout,
		SDKLibs:     opts.SDKLibs,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering project Makefile: %w", err)
	}

	if err := createRoot(dest); err != nil {
		return nil, err
	}

	result := &Result{OutputDir: dest}
	for _, dir := range []string{"lib", ".libs", "src"} {
		if err := os.Mkdir(filepath.Join(dest, dir), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	vals := values(map[string]string{"project": name})
	files := []struct {
		out  string
		tmpl string
	}{
		{"src/main.c", "main.c"},
		{"README.md", "project.md"},
		{"LICENSE.txt", "BSD.txt"},
	}

	if err := writeFile(result, "Makefile", mk); err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := renderFile(result, f.out, f.tmpl, vals); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// StartLibrary creates a new library at dest, which must not exist. An empty
// lib.Name is taken from the last element of dest.
func StartLibrary(dest string, lib *manifest.Library) (*Result, error) {
	def := *lib
	if def.Name == "" {
		def.Name = filepath.Base(filepath.Clean(dest))
	}
	name := def.Name

	mk, err := readTemplate("library.mk")
	if err != nil {
		return nil, err
	}
	mk, unknown, err := makefile.ApplyLibrary(mk, librarySettings(def.Overrides()))
	if err != nil {
		return nil, fmt.Errorf("rendering library Makefile: %w", err)
	}

	if err := createRoot(dest); err != nil {
		return nil, err
	}

	result := &Result{OutputDir: dest}
	result.Warnings = append(result.Warnings, unknownSDKWarnings(unknown)...)

	for _, dir := range []string{"src", "include"} {
		if err := os.Mkdir(filepath.Join(dest, dir), 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := writeFile(result, "Makefile", mk); err != nil {
		return nil, err
	}
	if err := manifest.Save(filepath.Join(dest, manifest.FileName), &def); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, manifest.FileName)

	url := def.URL
	if url == "" {
		url = unknownURL
	}
	vals := values(map[string]string{
		"project": name,
		"url":     url,
		"guard":   headerGuard(name),
	})
	files := []struct {
		out  string
		tmpl string
	}{
		{"README.md", "library.md"},
		{"LICENSE.txt", "BSD.txt"},
		{filepath.Join("src", name+".c"), "library.c"},
		{filepath.Join("include", name+".h"), "library.h"},
	}
	for _, f := range files {
		if err := renderFile(result, f.out, f.tmpl, vals); err != nil {
			return nil, err
		}
	}

	// Validate the generated definition against the JSON Schema.
	valResult, valErr := manifest.ValidateFile(filepath.Join(dest, manifest.FileName))
	if valErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not validate library definition: %v", valErr))
	} else if !valResult.Valid {
		for _, issue := range valResult.Issues {
			result.Warnings = append(result.Warnings, issue.String())
		}
	}

	return result, nil
}

// ModifyProject applies settings to the Makefile of the project in dir.
func ModifyProject(dir string, s makefile.ProjectSettings) error {
	path := filepath.Join(dir, "Makefile")
	if !isFile(path) {
		return ErrNotProject
	}
	return makefile.Rewrite(path, func(text string) (string, error) {
		return makefile.ApplyProject(text, s)
	})
}

// ModifyLibrary applies overrides to the Makefile and library.json of the
// library in dir. Only provided fields change.
func ModifyLibrary(dir string, o manifest.Overrides) (*Result, error) {
	defPath := filepath.Join(dir, manifest.FileName)
	if !isFile(defPath) {
		return nil, ErrNotLibrary
	}

	lib, err := manifest.Load(defPath)
	if err != nil {
		return nil, err
	}
	lib.Apply(o)

	result := &Result{OutputDir: dir}
	var unknown []string
	err = makefile.Rewrite(filepath.Join(dir, "Makefile"), func(text string) (string, error) {
		var err error
		text, unknown, err = makefile.ApplyLibrary(text, librarySettings(o))
		return text, err
	})
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, "Makefile")
	result.Warnings = append(result.Warnings, unknownSDKWarnings(unknown)...)

	if err := manifest.Save(defPath, lib); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, manifest.FileName)

	return result, nil
}

// librarySettings maps definition overrides onto Makefile settings.
func librarySettings(o manifest.Overrides) makefile.LibrarySettings {
	s := makefile.LibrarySettings{
		Name:     o.Name,
		Includes: o.Includes,
		CFlags:   o.CFlags,
		LDFlags:  o.LDFlags,
	}
	if o.SDKDependencies != nil {
		s.SDKDependencies = manifest.SplitList(*o.SDKDependencies)
	}
	return s
}

func unknownSDKWarnings(unknown []string) []string {
	var warnings []string
	for _, kw := range unknown {
		warnings = append(warnings, fmt.Sprintf("unknown SDK dependency %q, no include path added (known: %v)", kw, makefile.SDKKeywords()))
	}
	return warnings
}

// createRoot creates dest, failing if anything already exists there.
func createRoot(dest string) error {
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%s: %w", dest, ErrDestinationExists)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dest, err)
	}
	if err := os.Mkdir(dest, 0755); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", dest, ErrDestinationExists)
		}
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	return nil
}

func renderFile(result *Result, out, tmpl string, vals map[string]string) error {
	text, err := readTemplate(tmpl)
	if err != nil {
		return err
	}
	return writeFile(result, out, Substitute(text, vals))
}

func writeFile(result *Result, rel, content string) error {
	path := filepath.Join(result.OutputDir, rel)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	result.Files = append(result.Files, filepath.ToSlash(rel))
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
