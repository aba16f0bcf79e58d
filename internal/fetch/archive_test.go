package fetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTarGz builds a tar.gz archive from name -> content pairs. Names
// ending in "/" become directories.
func createTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if strings.HasSuffix(name, "/") {
			hdr = &tar.Header{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	tw.Close()
	gw.Close()
	return buf.Bytes()
}

func createZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	zw.Close()
	return buf.Bytes()
}

func serve(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestArchiveFetchTarGzStripsTopDir(t *testing.T) {
	data := createTarGz(t, map[string]string{
		"jsmn-1.0/":        "",
		"jsmn-1.0/jsmn.c":  "int jsmn;",
		"jsmn-1.0/jsmn.h":  "#pragma once",
		"jsmn-1.0/LICENSE": "MIT",
	})
	server := serve(t, data)

	dest := filepath.Join(t.TempDir(), ".libs", "jsmn-1.0")
	a := NewArchive(WithHTTPClient(server.Client()))
	if err := a.Fetch(context.Background(), server.URL+"/jsmn-1.0.tar.gz", "", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	for _, f := range []string{"jsmn.c", "jsmn.h", "LICENSE"} {
		if _, err := os.Stat(filepath.Join(dest, f)); err != nil {
			t.Errorf("expected %s at the top of dest: %v", f, err)
		}
	}
	assertNoStaging(t, filepath.Dir(dest))
}

func TestArchiveFetchZipFlat(t *testing.T) {
	data := createZip(t, map[string]string{
		"ini.c":        "int ini;",
		"ini.h":        "#pragma once",
		"examples/a.c": "int a;",
	})
	server := serve(t, data)

	dest := filepath.Join(t.TempDir(), "inih")
	a := NewArchive(WithHTTPClient(server.Client()), WithUserAgent("test-agent"))
	if err := a.Fetch(context.Background(), server.URL+"/inih.zip", "", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	for _, f := range []string{"ini.c", "ini.h", "examples/a.c"} {
		if _, err := os.Stat(filepath.Join(dest, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
}

func TestArchiveFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusNotFound)
	}))
	defer server.Close()

	parent := t.TempDir()
	dest := filepath.Join(parent, "lib")
	err := NewArchive(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL+"/lib.zip", "", dest)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "gone fishing") {
		t.Errorf("error should carry status and body: %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("dest should not exist after a failed download")
	}
	assertNoStaging(t, parent)
}

func TestArchiveFetchUnsupported(t *testing.T) {
	err := NewArchive().Fetch(context.Background(), "https://example.com/lib.rar", "", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("expected ErrUnsupportedArchive, got %v", err)
	}
}

func TestArchiveFetchExistingDest(t *testing.T) {
	dest := t.TempDir()
	if err := NewArchive().Fetch(context.Background(), "https://example.com/lib.zip", "", dest); err == nil {
		t.Fatal("expected error when dest exists")
	}
}

func TestArchiveRejectsEscapingEntries(t *testing.T) {
	data := createTarGz(t, map[string]string{
		"../evil.txt": "pwned",
	})
	server := serve(t, data)

	parent := t.TempDir()
	dest := filepath.Join(parent, "lib")
	err := NewArchive(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL+"/evil.tar.gz", "", dest)
	if err == nil {
		t.Fatal("expected error for escaping entry")
	}
	if _, err := os.Stat(filepath.Join(parent, "evil.txt")); !os.IsNotExist(err) {
		t.Error("escaping entry was written")
	}
}

func TestArchiveUpdateReplacesTree(t *testing.T) {
	version := "v1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		files := map[string]string{"lib-" + version + "/lib.c": version}
		if version == "v1" {
			files["lib-v1/removed.c"] = "old"
		}
		w.Write(createTarGz(t, files))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "lib")
	a := NewArchive(WithHTTPClient(server.Client()))
	url := server.URL + "/lib.tar.gz"
	if err := a.Fetch(context.Background(), url, "", dest); err != nil {
		t.Fatal(err)
	}

	version = "v2"
	if err := a.Update(context.Background(), url, "", dest); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "lib.c"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v2" {
		t.Errorf("lib.c = %q, want %q", data, "v2")
	}
	if _, err := os.Stat(filepath.Join(dest, "removed.c")); !os.IsNotExist(err) {
		t.Error("stale file survived the update")
	}
	assertNoStaging(t, filepath.Dir(dest))
}

func TestArchiveUpdateFailureKeepsOldTree(t *testing.T) {
	fail := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(createTarGz(t, map[string]string{"lib.c": "v1"}))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "lib")
	a := NewArchive(WithHTTPClient(server.Client()))
	url := server.URL + "/lib.tgz"
	if err := a.Fetch(context.Background(), url, "", dest); err != nil {
		t.Fatal(err)
	}

	fail = true
	if err := a.Update(context.Background(), url, "", dest); err == nil {
		t.Fatal("expected update error")
	}
	if _, err := os.Stat(filepath.Join(dest, "lib.c")); err != nil {
		t.Errorf("old tree should survive a failed update: %v", err)
	}
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "d")
	for _, bad := range []string{"../x", "a/../../x", "/etc/passwd"} {
		if _, err := safeJoin(dest, bad); err == nil {
			t.Errorf("safeJoin(%q) should fail", bad)
		}
	}
	got, err := safeJoin(dest, "a/./b/../c.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dest, "a", "c.txt") {
		t.Errorf("safeJoin = %q", got)
	}
}

func assertNoStaging(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".download-") || strings.HasPrefix(e.Name(), ".unpack-") || strings.HasSuffix(e.Name(), ".old") {
			t.Errorf("staging leftover %s", e.Name())
		}
	}
}
