package makefile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrAssignmentNotFound is returned when a Makefile lacks an expected
// assignment line. It means the Makefile was not generated from our templates.
var ErrAssignmentNotFound = errors.New("assignment not found in Makefile")

// Assignment identifies one variable assignment line, e.g. "LIBS +=".
type Assignment struct {
	Name string
	Op   string
}

// Known assignments.
var (
	Project   = Assignment{Name: "PROJECT", Op: ":="}
	IncDir    = Assignment{Name: "INCDIR", Op: "+="}
	CFlags    = Assignment{Name: "CFLAGS", Op: "+="}
	LDFlags   = Assignment{Name: "LDFLAGS", Op: "+="}
	Libs      = Assignment{Name: "LIBS", Op: "+="}
	FlashSize = Assignment{Name: "FLASH_SIZE", Op: "="}
	LDScript  = Assignment{Name: "LD_SCRIPT", Op: "="}
	SrcLibs   = Assignment{Name: "SRC_LIBS", Op: "="}
)

// String returns the assignment as it appears in a Makefile, e.g. "LIBS +=".
func (a Assignment) String() string {
	return a.Name + " " + a.Op
}

func (a Assignment) pattern() *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(a.Name) + `[ \t]*` + regexp.QuoteMeta(a.Op) + `[ \t]*([^\n]*)$`)
}

// Line formats an assignment line: the name padded to 12 columns, the
// operator and the value.
func (a Assignment) Line(value string) string {
	return strings.TrimRight(fmt.Sprintf("%-12s%s %s", a.Name, a.Op, value), " \t\r")
}

// Get returns the value of the first matching assignment line.
func Get(text string, a Assignment) (string, error) {
	m := a.pattern().FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%s: %w", a, ErrAssignmentNotFound)
	}
	return strings.TrimSpace(m[1]), nil
}

// Set replaces the first matching assignment line with a freshly formatted
// one. The value is inserted literally.
func Set(text string, a Assignment, value string) (string, error) {
	loc := a.pattern().FindStringIndex(text)
	if loc == nil {
		return "", fmt.Errorf("%s: %w", a, ErrAssignmentNotFound)
	}
	line := a.Line(value)
	// Keep a CRLF line ending intact.
	if strings.HasSuffix(text[loc[0]:loc[1]], "\r") {
		line += "\r"
	}
	return text[:loc[0]] + line + text[loc[1]:], nil
}
