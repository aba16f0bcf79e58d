package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalid is wrapped by InvalidError.
var ErrInvalid = errors.New("invalid library definition")

// InvalidError lists the schema issues of a rejected definition.
type InvalidError struct {
	Origin string
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.String())
	}
	return fmt.Sprintf("%s: %s: %s", e.Origin, ErrInvalid, strings.Join(msgs, "; "))
}

func (e *InvalidError) Unwrap() error { return ErrInvalid }

// Load reads and validates a library definition file.
func Load(path string) (*Library, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse validates data against the library schema and decodes it. origin
// names the data's source in error messages.
func Parse(data []byte, origin string) (*Library, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", origin, err)
	}
	if !result.Valid {
		return nil, &InvalidError{Origin: origin, Issues: result.Issues}
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parsing library definition %s: %w", origin, err)
	}
	return &lib, nil
}

// Marshal renders lib as 4-space indented JSON with a trailing newline.
// Dependency lists are always written, as [] when empty.
func Marshal(lib *Library) ([]byte, error) {
	out := *lib
	if out.Dependencies == nil {
		out.Dependencies = []string{}
	}
	if out.SDKDependencies == nil {
		out.SDKDependencies = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encoding library definition: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes lib to path.
func Save(path string, lib *Library) error {
	data, err := Marshal(lib)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
