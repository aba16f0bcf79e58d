package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
)

func TestBundledDefinitionsAreValid(t *testing.T) {
	c := New(Bundled())
	names := c.Names()
	if len(names) == 0 {
		t.Fatal("no bundled definitions")
	}
	for _, n := range names {
		t.Run(n, func(t *testing.T) {
			e, err := c.Lookup(n)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", n, err)
			}
			if e.Definition.Name != n {
				t.Errorf("definition name = %q, want file name %q", e.Definition.Name, n)
			}
			if e.Definition.RunScript != "" {
				if _, err := e.ReadFile(e.Definition.RunScript); err != nil {
					t.Errorf("run_script %q missing: %v", e.Definition.RunScript, err)
				}
			}
		})
	}
}

func TestLookupBundled(t *testing.T) {
	e, err := New(Bundled()).Lookup("jsmn")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if e.SourceName != "bundled" {
		t.Errorf("SourceName = %q, want %q", e.SourceName, "bundled")
	}
	if e.Definition.URL != "git+https://github.com/zserge/jsmn.git@v1.0.0" {
		t.Errorf("URL = %q", e.Definition.URL)
	}
	if !e.Definition.NeedsConversion() {
		t.Error("jsmn should need conversion")
	}
}

func TestLookupPriority(t *testing.T) {
	high := fstest.MapFS{
		"minic.json": {Data: []byte(`{"name": "minic", "url": "git+https://example.com/fork.git@dev"}`)},
	}
	low := fstest.MapFS{
		"minic.json": {Data: []byte(`{"name": "minic", "url": "git+https://example.com/minic.git@master"}`)},
		"other.json": {Data: []byte(`{"name": "other"}`)},
	}
	c := New(Source{Name: "high", FS: high}, Source{Name: "low", FS: low})

	e, err := c.Lookup("minic")
	if err != nil {
		t.Fatal(err)
	}
	if e.SourceName != "high" {
		t.Errorf("SourceName = %q, want %q", e.SourceName, "high")
	}
	if e.Definition.URL != "git+https://example.com/fork.git@dev" {
		t.Errorf("URL = %q, want the high-priority fork", e.Definition.URL)
	}

	e, err = c.Lookup("other")
	if err != nil {
		t.Fatal(err)
	}
	if e.SourceName != "low" {
		t.Errorf("SourceName = %q, want %q", e.SourceName, "low")
	}
}

func TestLookupNotFound(t *testing.T) {
	c := New(Bundled())
	for _, name := range []string{"does-not-exist", "../etc/passwd", ""} {
		_, err := c.Lookup(name)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestLookupInvalidDefinition(t *testing.T) {
	src := fstest.MapFS{
		"broken.json": {Data: []byte(`{"name": "broken", "dependencies": "x"}`)},
	}
	_, err := New(Source{Name: "test", FS: src}).Lookup("broken")
	if !errors.Is(err, manifest.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestNamesDeduplicated(t *testing.T) {
	a := fstest.MapFS{"jsmn.json": {Data: []byte(`{"name": "jsmn"}`)}, "zeta.json": {Data: []byte(`{"name": "zeta"}`)}}
	c := New(Source{Name: "a", FS: a}, Bundled())

	names := c.Names()
	count := 0
	for _, n := range names {
		if n == "jsmn" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("jsmn listed %d times in %v", count, names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestSuggest(t *testing.T) {
	c := New(Bundled())

	tests := []struct {
		query string
		want  string
	}{
		{"jsm", "jsmn"},
		{"ini", "inih"},
		{"minic-lib", "minic"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Suggest(tt.query)
			found := false
			for _, s := range got {
				if s == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Suggest(%q) = %v, want it to contain %q", tt.query, got, tt.want)
			}
			if len(got) > maxSuggestions {
				t.Errorf("Suggest(%q) returned %d suggestions", tt.query, len(got))
			}
		})
	}

	if got := c.Suggest("qqqqqq"); len(got) != 0 {
		t.Errorf("Suggest(qqqqqq) = %v, want none", got)
	}
}

func TestDefaultSources(t *testing.T) {
	user := t.TempDir()
	repo := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repo, "libs"), 0755); err != nil {
		t.Fatal(err)
	}

	c := Default(user, repo)
	var names []string
	for _, s := range c.Sources() {
		names = append(names, s.Name)
	}
	want := []string{"user", "catalog repository", "bundled"}
	if len(names) != len(want) {
		t.Fatalf("sources = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("source[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if got := len(Default("", filepath.Join(repo, "missing")).Sources()); got != 1 {
		t.Errorf("expected only the bundled source, got %d", got)
	}
}

func TestEntryFromFile(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(def, []byte(`{"name": "custom", "run_script": "convert.sh"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "convert.sh"), []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := EntryFromFile(def)
	if err != nil {
		t.Fatalf("EntryFromFile() error: %v", err)
	}
	if e.Name != "custom" {
		t.Errorf("Name = %q, want %q", e.Name, "custom")
	}
	data, err := e.ReadFile("convert.sh")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "#!/bin/sh\n" {
		t.Errorf("script = %q", data)
	}
}

func TestFreshnessMarker(t *testing.T) {
	dir := t.TempDir()

	if !IsStale(dir, DefaultMaxAge) {
		t.Error("missing marker should be stale")
	}

	WriteFreshnessMarker(dir)
	if IsStale(dir, DefaultMaxAge) {
		t.Error("fresh marker should not be stale")
	}

	old := strconv.FormatInt(time.Now().Add(-8*24*time.Hour).Unix(), 10)
	if err := os.WriteFile(filepath.Join(dir, freshnessFile), []byte(old), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsStale(dir, DefaultMaxAge) {
		t.Error("8 day old marker should be stale")
	}

	if err := os.WriteFile(filepath.Join(dir, freshnessFile), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if !ReadFreshnessMarker(dir).IsZero() {
		t.Error("unparseable marker should read as zero time")
	}
}
