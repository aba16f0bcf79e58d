package convert

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Runtime names accepted by New.
const (
	RuntimeAuto    = "auto"
	RuntimeNative  = "native"
	RuntimeVirtual = "virtual"
)

// Converter runs a conversion script with workDir as its working directory.
type Converter interface {
	Convert(ctx context.Context, script, workDir string) error
}

// New returns the converter for a runtime name.
func New(name string) (Converter, error) {
	switch strings.ToLower(name) {
	case "", RuntimeAuto:
		return &Auto{}, nil
	case RuntimeNative:
		return &Native{}, nil
	case RuntimeVirtual:
		return &Virtual{}, nil
	default:
		return nil, fmt.Errorf("unknown conversion runtime %q (use %s, %s or %s)", name, RuntimeAuto, RuntimeNative, RuntimeVirtual)
	}
}

// Auto runs shell scripts in the embedded interpreter when the host has no
// sh (or is Windows) and everything else natively.
type Auto struct {
	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// Convert picks a runtime for script and runs it.
func (a *Auto) Convert(ctx context.Context, script, workDir string) error {
	return a.pick(script).Convert(ctx, script, workDir)
}

func (a *Auto) pick(script string) Converter {
	if strings.ToLower(filepath.Ext(script)) != ".sh" {
		return &Native{}
	}
	if runtime.GOOS == "windows" {
		return &Virtual{}
	}
	lookPath := a.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("sh"); err != nil {
		return &Virtual{}
	}
	return &Native{}
}
