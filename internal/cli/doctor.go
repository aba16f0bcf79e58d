package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/config"
	"github.com/esp8266-setup/esp8266-setup/internal/convert"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
)

var checkDefinition string

func init() {
	doctorCmd.Flags().StringVar(&checkDefinition, "check-definition", "", "Validate a library definition file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and the current project",
	Long: `Run diagnostic checks: required tools, configuration, catalog and, when
run inside a project, the installed libraries.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if checkDefinition != "" {
			return runDefinitionCheck(out, checkDefinition)
		}

		runToolCheck(out)
		runConfigCheck(out)
		runCatalogCheck(out)
		if wd, err := os.Getwd(); err == nil {
			runProjectCheck(out, wd)
		}
		return nil
	},
}

func runToolCheck(w io.Writer) {
	fmt.Fprintln(w, "Tool check:")
	checkBinary(w, "git")
	checkBinary(w, "sh")
}

func checkBinary(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
}

func runConfigCheck(w io.Writer) {
	fmt.Fprintln(w, "Config check:")
	if _, err := os.Stat(config.FilePath()); err != nil {
		fmt.Fprintf(w, "  [INFO] %s not present, using defaults\n", config.FilePath())
	} else {
		fmt.Fprintf(w, "  [ OK ] %s\n", config.FilePath())
	}
	if _, err := convert.New(config.Converter()); err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
	} else {
		fmt.Fprintf(w, "  [ OK ] conversion runtime: %s\n", config.Converter())
	}
}

func runCatalogCheck(w io.Writer) {
	fmt.Fprintln(w, "Catalog check:")
	entries, errs := buildCatalog().List()
	fmt.Fprintf(w, "  [ OK ] %d library definitions\n", len(entries))
	for _, err := range errs {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
	}
	repoDir := config.CatalogRepoDir()
	if _, err := os.Stat(repoDir); err == nil && catalog.IsStale(repoDir, catalog.DefaultMaxAge) {
		fmt.Fprintln(w, "  [WARN] catalog repository is stale")
	}
}

func runProjectCheck(w io.Writer, dir string) {
	if _, err := os.Stat(filepath.Join(dir, "Makefile")); err != nil {
		return
	}
	fmt.Fprintln(w, "Project check:")
	entries, err := os.ReadDir(filepath.Join(dir, "lib"))
	if err != nil {
		fmt.Fprintf(w, "  [WARN] cannot read lib/: %v\n", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		def := filepath.Join(dir, "lib", e.Name(), manifest.FileName)
		result, err := manifest.ValidateFile(def)
		switch {
		case err != nil:
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", e.Name(), err)
		case !result.Valid:
			fmt.Fprintf(w, "  [FAIL] %s: %d validation issue(s)\n", e.Name(), len(result.Issues))
		default:
			fmt.Fprintf(w, "  [ OK ] %s\n", e.Name())
		}
	}
}

func runDefinitionCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Definition validation: %s\n", path)

	// Validate against JSON Schema.
	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("definition validation failed: %w", err)
	}

	if result.Valid {
		lib, err := manifest.Load(path)
		if err != nil {
			fmt.Fprintf(w, "  [ OK ] Valid definition\n")
			return nil
		}
		fmt.Fprintf(w, "  [ OK ] Valid definition: %s (%s)\n", lib.Name, lib.DisplayVersion())
		return nil
	}

	// Report validation issues.
	fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "    - %s\n", issue.String())
	}
	return fmt.Errorf("definition %s has %d validation issue(s)", path, len(result.Issues))
}
