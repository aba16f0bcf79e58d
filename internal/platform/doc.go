// Package platform provides cross-platform filesystem operations used when
// installing libraries: permission changes, hard links with a copy fallback
// and recursive tree copies. On Windows permission bits are ignored.
package platform
