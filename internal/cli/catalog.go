package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/branding"
	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/config"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogUpdateCmd)
	catalogCmd.AddCommand(catalogStatusCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the library definition catalog",
	Long: `Manage the catalog of library definitions that bare library names resolve
against.

Definitions are looked up in the configured catalog_dir first, then in the
catalog repository synced to ~/.esp8266-setup/catalog-repo/, then in the
definitions bundled with the binary.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available library definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, errs := buildCatalog().List()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tSOURCE\tURL")
		for _, e := range entries {
			version := e.Definition.Version
			if version == "" {
				version = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, version, e.SourceName, e.Definition.URL)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, err := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning(err.Error()))
		}
		return nil
	},
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the catalog repository to the latest version",
	Long: `Pull the latest library definitions from the catalog repository.
If the repository hasn't been cloned yet, it will be cloned first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repoDir := config.CatalogRepoDir()
		if err := config.EnsureDir(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updating catalog at %s...\n", repoDir)
		if err := catalog.Sync(cmd.Context(), repoDir, config.CatalogRepoURL()); err != nil {
			return fmt.Errorf("updating catalog: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Catalog updated successfully."))
		return nil
	},
}

var catalogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog sources and freshness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		repoDir := config.CatalogRepoDir()

		fmt.Fprintln(out, ui.TitleStyle.Render("Sources (highest priority first):"))
		for _, src := range buildCatalog().Sources() {
			fmt.Fprintf(out, "  %s\n", src.Name)
		}
		if dir := config.CatalogDir(); dir != "" {
			fmt.Fprintf(out, "User catalog: %s\n", dir)
		}
		fmt.Fprintf(out, "Repo path:    %s\n", repoDir)
		fmt.Fprintf(out, "Repo URL:     %s\n", config.CatalogRepoURL())

		if _, err := os.Stat(repoDir); err != nil {
			fmt.Fprintln(out, "Status:       not installed")
			fmt.Fprintf(out, "\nRun '%s catalog update' to install.\n", branding.CLIName())
			return nil
		}

		lastUpdated := catalog.ReadFreshnessMarker(repoDir)
		if lastUpdated.IsZero() {
			fmt.Fprintln(out, "Last updated: unknown")
		} else {
			age := time.Since(lastUpdated).Truncate(time.Minute)
			fmt.Fprintf(out, "Last updated: %s (%s ago)\n", lastUpdated.Format(time.RFC3339), age)
		}

		if catalog.IsStale(repoDir, catalog.DefaultMaxAge) {
			fmt.Fprintf(out, "Status:       stale (run '%s catalog update')\n", branding.CLIName())
		} else {
			fmt.Fprintln(out, "Status:       up to date")
		}
		return nil
	},
}
