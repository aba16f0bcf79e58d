// Package manifest defines the library definition (library.json) format:
// typed parsing, JSON Schema validation, formatted writing, field overrides
// and version comparison.
package manifest
