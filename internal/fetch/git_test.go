package fetch

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// newUpstream creates a local repository with one commit on master and a
// v1.0.0 tag, returning its path.
func newUpstream(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := filepath.Join(t.TempDir(), "upstream")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	gitRun(t, dir, "init", "-q", "-b", "master")
	writeCommit(t, dir, "lib.c", "v1")
	gitRun(t, dir, "tag", "v1.0.0")
	return dir
}

func writeCommit(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	gitRun(t, dir, "add", name)
	gitRun(t, dir, "commit", "-q", "-m", content)
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestGitFetchAndUpdateBranch(t *testing.T) {
	upstream := newUpstream(t)
	dest := filepath.Join(t.TempDir(), ".libs", "upstream")
	g := &Git{}
	ctx := context.Background()

	if err := g.Fetch(ctx, upstream, "master", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.c")); got != "v1" {
		t.Errorf("lib.c = %q, want %q", got, "v1")
	}

	writeCommit(t, upstream, "lib.c", "v2")

	// Local edits are discarded by an update.
	if err := os.WriteFile(filepath.Join(dest, "lib.c"), []byte("dirty"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := g.Update(ctx, upstream, "master", dest); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.c")); got != "v2" {
		t.Errorf("lib.c after update = %q, want %q", got, "v2")
	}
}

func TestGitFetchTag(t *testing.T) {
	upstream := newUpstream(t)
	writeCommit(t, upstream, "lib.c", "v2")

	dest := filepath.Join(t.TempDir(), "lib")
	g := &Git{}
	if err := g.Fetch(context.Background(), upstream, "v1.0.0", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.c")); got != "v1" {
		t.Errorf("lib.c = %q, want tagged %q", got, "v1")
	}

	if err := g.Update(context.Background(), upstream, "v1.0.0", dest); err != nil {
		t.Fatalf("Update() on a tag error: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "lib.c")); got != "v1" {
		t.Errorf("tag checkout moved to %q", got)
	}
}

func TestGitFetchBadRef(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	upstream := newUpstream(t)
	dest := filepath.Join(t.TempDir(), "lib")

	err := (&Git{}).Fetch(context.Background(), upstream, "no-such-branch", dest)
	if err == nil {
		t.Fatal("expected error for unknown ref")
	}
	if !strings.Contains(err.Error(), "no-such-branch") {
		t.Errorf("error should name the ref and carry git output: %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("clone with a failed checkout should be removed")
	}
}

func TestGitFetchBadURL(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dest := filepath.Join(t.TempDir(), "lib")
	err := (&Git{}).Fetch(context.Background(), filepath.Join(t.TempDir(), "missing"), "master", dest)
	if err == nil {
		t.Fatal("expected clone error")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial clone should be removed")
	}
}

func TestGitMissingBinary(t *testing.T) {
	g := &Git{Binary: "git-binary-that-does-not-exist"}
	err := g.Fetch(context.Background(), "https://example.com/x.git", "master", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, ErrGitNotFound) {
		t.Fatalf("expected ErrGitNotFound, got %v", err)
	}
}
