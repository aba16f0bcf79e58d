// Package makefile edits the single-line variable assignments of project and
// library Makefiles. Lines are located with anchored patterns and replaced in
// place; the rest of the file is never touched. It also knows the include
// paths of the SDK components and the supported flash layouts.
package makefile
