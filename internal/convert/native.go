package convert

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/esp8266-setup/esp8266-setup/internal/platform"
)

// Native marks the script executable and runs it without arguments.
type Native struct{}

// Convert runs script in workDir. A non-zero exit is an error carrying the
// script's combined output.
func (n *Native) Convert(ctx context.Context, script, workDir string) error {
	abs, err := filepath.Abs(script)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", script, err)
	}
	if err := platform.MakeExecutable(abs); err != nil {
		return fmt.Errorf("making %s executable: %w", script, err)
	}

	cmd := exec.CommandContext(ctx, abs)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("conversion script %s failed: %w\n%s", filepath.Base(script), err, strings.TrimSpace(string(output)))
	}
	return nil
}
