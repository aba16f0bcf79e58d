package makefile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Rewrite reads the Makefile at path, passes its text through edit and
// writes the result back through a temporary file and a rename, so an
// interrupted write never leaves a truncated Makefile. Nothing is written
// when edit fails.
func Rewrite(path string, edit func(text string) (string, error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := edit(string(data))
	if err != nil {
		return fmt.Errorf("editing %s: %w", path, err)
	}
	if text == string(data) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".Makefile-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
