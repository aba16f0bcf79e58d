package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrGitNotFound is returned when git is not on PATH.
var ErrGitNotFound = errors.New("git is required but not found in PATH")

// Git fetches sources with the git command line client.
type Git struct {
	// Binary is the git executable; "git" when empty.
	Binary string
}

// Fetch clones url into dest and checks out ref. dest is removed when
// either step fails.
func (g *Git) Fetch(ctx context.Context, url, ref, dest string) error {
	if err := g.ensure(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	if _, err := g.run(ctx, "", "clone", url, dest); err != nil {
		_ = os.RemoveAll(dest)
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	if _, err := g.run(ctx, dest, "checkout", ref); err != nil {
		_ = os.RemoveAll(dest)
		return fmt.Errorf("checking out %s: %w", ref, err)
	}
	return nil
}

// Update discards local changes in dest, fetches from origin and moves to
// ref. Branches are fast-forwarded to the remote head.
func (g *Git) Update(ctx context.Context, url, ref, dest string) error {
	if err := g.ensure(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dest, ".git")); err != nil {
		return fmt.Errorf("%s is not a git checkout", dest)
	}

	steps := [][]string{
		{"fetch", "--tags", "origin"},
		{"reset", "--hard"},
		{"checkout", ref},
	}
	for _, args := range steps {
		if _, err := g.run(ctx, dest, args...); err != nil {
			return fmt.Errorf("updating %s: %w", url, err)
		}
	}

	remote := "origin/" + ref
	if _, err := g.run(ctx, dest, "rev-parse", "--verify", "--quiet", remote); err != nil {
		// Tags and commits have no remote branch to follow.
		return nil
	}
	if _, err := g.run(ctx, dest, "reset", "--hard", remote); err != nil {
		return fmt.Errorf("updating %s: %w", url, err)
	}
	return nil
}

func (g *Git) binary() string {
	if g.Binary != "" {
		return g.Binary
	}
	return "git"
}

func (g *Git) ensure() error {
	if _, err := exec.LookPath(g.binary()); err != nil {
		return ErrGitNotFound
	}
	return nil
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
