package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/branding"
	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/config"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: ui.TitleStyle.Render(branding.DisplayName()) + ` creates ESP8266 RTOS SDK firmware projects and
libraries and manages the libraries a project builds with.

Libraries are referenced by git URL (git+<url>@<ref>), archive URL,
definition file or catalog name, fetched into .libs/ and installed into lib/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()

		// Catalog freshness check, no network.
		if cmd.Parent() != nil && cmd.Parent().Name() == "catalog" {
			return
		}
		repoDir := config.CatalogRepoDir()
		if _, err := os.Stat(repoDir); err == nil && catalog.IsStale(repoDir, catalog.DefaultMaxAge) {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning(fmt.Sprintf("Catalog is more than 7 days old. Run '%s catalog update'.", branding.CLIName())))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

func versionString() string {
	if buildVersion == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}

// Execute runs the root command with build info injected via ldflags.
// Interrupts cancel the command's context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
}
