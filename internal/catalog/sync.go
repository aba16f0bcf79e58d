package catalog

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// freshnessFile is the name of the timestamp marker file.
	freshnessFile = ".catalog-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"
)

// Sync brings the catalog repository in repoDir up to date, cloning it from
// repoURL when it is not there yet.
func Sync(ctx context.Context, repoDir, repoURL string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); os.IsNotExist(err) {
		return Clone(ctx, repoDir, repoURL)
	}

	if _, err := runGit(ctx, repoDir, "pull", "--depth=1", "--rebase"); err != nil {
		return fmt.Errorf("pulling catalog updates: %w", err)
	}

	WriteFreshnessMarker(repoDir)
	return nil
}

// Clone performs a shallow clone of the catalog into targetDir.
// It attempts a sparse checkout of libs/ first and falls back to a full
// shallow clone when the installed git does not support it.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up.
func Clone(ctx context.Context, targetDir, repoURL string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	tmpDir := targetDir + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if err := trySparseClone(ctx, tmpDir, repoURL); err != nil {
		_ = os.RemoveAll(tmpDir)
		if _, err := runGit(ctx, "", "clone", "--depth=1", repoURL, tmpDir); err != nil {
			_ = os.RemoveAll(tmpDir)
			return fmt.Errorf("cloning catalog: %w", err)
		}
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing catalog dir: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing catalog clone: %w", err)
	}

	WriteFreshnessMarker(targetDir)
	return nil
}

// WriteFreshnessMarker writes the current Unix timestamp to the freshness file.
func WriteFreshnessMarker(repoDir string) {
	markerPath := filepath.Join(repoDir, freshnessFile)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath, []byte(ts), 0644)
}

// ReadFreshnessMarker reads the timestamp from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(repoDir string) time.Time {
	data, err := os.ReadFile(filepath.Join(repoDir, freshnessFile))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if the catalog was last updated more than maxAge ago.
// Returns true if the freshness marker doesn't exist.
func IsStale(repoDir string, maxAge time.Duration) bool {
	lastUpdated := ReadFreshnessMarker(repoDir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}

// trySparseClone attempts a sparse shallow clone that only checks out libs/.
func trySparseClone(ctx context.Context, targetDir, repoURL string) error {
	if _, err := runGit(ctx, "", "clone", "--depth=1", "--sparse", "--no-checkout", repoURL, targetDir); err != nil {
		return err
	}
	if _, err := runGit(ctx, targetDir, "sparse-checkout", "set", "libs/"); err != nil {
		return err
	}
	_, err := runGit(ctx, targetDir, "checkout")
	return err
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
