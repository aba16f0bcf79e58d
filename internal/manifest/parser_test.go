package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testdataDir = "testdata"

func testPath(name string) string {
	return filepath.Join(testdataDir, name)
}

func TestLoad_Native(t *testing.T) {
	lib, err := Load(testPath("native.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if lib.Name != "minic" {
		t.Errorf("Name = %q, want %q", lib.Name, "minic")
	}
	if lib.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", lib.Version, "1.2.0")
	}
	if lib.NeedsConversion() {
		t.Error("native library should not need conversion")
	}
	if len(lib.Dependencies) != 0 {
		t.Errorf("Dependencies = %v, want empty", lib.Dependencies)
	}
}

func TestLoad_Converted(t *testing.T) {
	lib, err := Load(testPath("converted.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !lib.NeedsConversion() {
		t.Error("expected conversion inputs")
	}
	if lib.RunScript != "jsmn.sh" {
		t.Errorf("RunScript = %q, want %q", lib.RunScript, "jsmn.sh")
	}
	if len(lib.Source) != 1 || lib.Source[0] != "jsmn.c" {
		t.Errorf("Source = %v, want [jsmn.c]", lib.Source)
	}
	if len(lib.SDKDependencies) != 1 || lib.SDKDependencies[0] != "json" {
		t.Errorf("SDKDependencies = %v, want [json]", lib.SDKDependencies)
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(testPath("invalid-missing-name.json"))
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error should wrap ErrInvalid, got %v", err)
	}
	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidError, got %T", err)
	}
	if len(invalid.Issues) == 0 {
		t.Error("expected at least one issue")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testPath("does-not-exist.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"name": `), "inline")
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !strings.Contains(err.Error(), "inline") {
		t.Errorf("error should name its origin: %v", err)
	}
}

func TestSaveFormatting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib", "demo", FileName)

	lib := &Library{Name: "demo", Author: "me", URL: "git+https://example.com/demo.git@main"}
	if err := Save(path, lib); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if !strings.HasPrefix(got, "{\n    \"name\": \"demo\",\n") {
		t.Errorf("expected 4-space indentation, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Error("expected trailing newline")
	}
	if !strings.Contains(got, `"dependencies": []`) {
		t.Errorf("empty dependencies should be written as [], got:\n%s", got)
	}
	if !strings.Contains(got, `"sdk_dependencies": []`) {
		t.Errorf("empty sdk_dependencies should be written as [], got:\n%s", got)
	}
	if strings.Contains(got, "extra_cflags") {
		t.Error("empty optional fields should be omitted")
	}
}

func TestSaveLoadPreservesFields(t *testing.T) {
	orig, err := Load(testPath("converted.json"))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(path, orig); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got.ExtraCFlags != orig.ExtraCFlags || got.RunScript != orig.RunScript || got.URL != orig.URL {
		t.Errorf("fields changed after save: got %+v, want %+v", got, orig)
	}
	if len(got.Include) != 1 || got.Include[0] != "jsmn.h" {
		t.Errorf("Include = %v, want [jsmn.h]", got.Include)
	}
}

func TestApplyOverrides(t *testing.T) {
	lib := &Library{
		Name:         "demo",
		Author:       "old",
		License:      "MIT",
		Dependencies: []string{"minic"},
	}

	author := "new"
	deps := "jsmn, ,inih,"
	sdk := ""
	lib.Apply(Overrides{Author: &author, Dependencies: &deps, SDKDependencies: &sdk})

	if lib.Author != "new" {
		t.Errorf("Author = %q, want %q", lib.Author, "new")
	}
	if lib.License != "MIT" {
		t.Errorf("License changed to %q, should be untouched", lib.License)
	}
	if lib.Name != "demo" {
		t.Errorf("Name changed to %q, should be untouched", lib.Name)
	}
	if strings.Join(lib.Dependencies, ",") != "jsmn,inih" {
		t.Errorf("Dependencies = %v, want [jsmn inih]", lib.Dependencies)
	}
	if lib.SDKDependencies == nil || len(lib.SDKDependencies) != 0 {
		t.Errorf("SDKDependencies = %#v, want empty non-nil", lib.SDKDependencies)
	}
}

func TestOverridesRoundTrip(t *testing.T) {
	src := &Library{
		Name:            "jsmn",
		Author:          "Serge",
		License:         "MIT",
		URL:             "git+https://github.com/zserge/jsmn.git@v1.0.0",
		Dependencies:    []string{"a", "b"},
		SDKDependencies: []string{"lwip"},
		ExtraCFlags:     "-O2",
	}

	var dst Library
	dst.Apply(src.Overrides())

	if dst.Name != src.Name || dst.URL != src.URL || dst.ExtraCFlags != src.ExtraCFlags {
		t.Errorf("got %+v, want %+v", dst, src)
	}
	if strings.Join(dst.Dependencies, ",") != "a,b" {
		t.Errorf("Dependencies = %v", dst.Dependencies)
	}
	if dst.ExtraLDFlags != "" {
		t.Errorf("ExtraLDFlags = %q, want empty", dst.ExtraLDFlags)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a"},
		{"a,b", "a|b"},
		{" a , ,b,", "a|b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitList(tt.in)
			if got == nil {
				t.Fatal("SplitList should never return nil")
			}
			if strings.Join(got, "|") != tt.want {
				t.Errorf("SplitList(%q) = %v, want %q", tt.in, got, tt.want)
			}
		})
	}
}
