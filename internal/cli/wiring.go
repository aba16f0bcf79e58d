package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/branding"
	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/config"
	"github.com/esp8266-setup/esp8266-setup/internal/convert"
	"github.com/esp8266-setup/esp8266-setup/internal/fetch"
	"github.com/esp8266-setup/esp8266-setup/internal/library"
	"github.com/esp8266-setup/esp8266-setup/internal/project"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

func newLogger(cmd *cobra.Command) *log.Logger {
	return ui.NewLogger(cmd.ErrOrStderr(), verbose || config.Verbose())
}

// buildCatalog constructs the catalog from the current configuration.
//
// Resolution order:
//  1. the configured catalog_dir
//  2. ~/.esp8266-setup/catalog-repo/libs/ (synced with 'catalog update')
//  3. the definitions bundled with the binary
func buildCatalog() *catalog.Catalog {
	return catalog.Default(config.CatalogDir(), config.CatalogRepoDir())
}

// buildRegistry returns the library registry of the project at root.
func buildRegistry(cmd *cobra.Command, root string) (*project.Registry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	conv, err := convert.New(config.Converter())
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd)
	resolver := library.NewResolver(abs, buildCatalog(), conv, logger)
	resolver.Archive = fetch.NewArchive(fetch.WithUserAgent(branding.CLIName() + "/" + buildVersion))
	return project.New(resolver, logger), nil
}

// workingDir returns the directory commands operate on.
func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

func printResult(cmd *cobra.Command, what string, result *scaffold.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Created %s at %s/", what, ui.NameStyle.Render(result.OutputDir))))
	for _, f := range result.Files {
		fmt.Fprintf(out, "  %s\n", ui.MutedStyle.Render(f))
	}
	printWarnings(cmd, result.Warnings)
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning(w))
	}
}

func describe(lib *library.Library) string {
	return fmt.Sprintf("%s %s %s", ui.NameStyle.Render(lib.Name), lib.Definition.DisplayVersion(),
		ui.MutedStyle.Render(fmt.Sprintf("(%s, %s)", lib.Kind(), lib.SourceType())))
}
