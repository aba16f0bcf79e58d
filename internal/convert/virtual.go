package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Virtual interprets POSIX shell scripts in-process. mkdir, cp, mv and rm
// are provided as builtins; other commands run from PATH.
type Virtual struct{}

// Convert parses and runs script in workDir.
func (v *Virtual) Convert(ctx context.Context, script, workDir string) error {
	src, err := os.ReadFile(script)
	if err != nil {
		return fmt.Errorf("reading conversion script: %w", err)
	}

	prog, err := syntax.NewParser().Parse(bytes.NewReader(src), filepath.Base(script))
	if err != nil {
		return fmt.Errorf("parsing conversion script %s: %w", filepath.Base(script), err)
	}

	var out bytes.Buffer
	runner, err := interp.New(
		interp.Dir(workDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, &out, &out),
		interp.ExecHandlers(builtins),
	)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return fmt.Errorf("conversion script %s failed: exit status %d\n%s", filepath.Base(script), int(status), strings.TrimSpace(out.String()))
		}
		return fmt.Errorf("conversion script %s failed: %w\n%s", filepath.Base(script), err, strings.TrimSpace(out.String()))
	}
	return nil
}
