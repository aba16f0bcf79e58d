package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/project"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var listJSON bool

func init() {
	listLibrariesCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listLibrariesCmd)
}

var listLibrariesCmd = &cobra.Command{
	Use:   "list-libraries",
	Short: "List the libraries installed in the project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cmd, wd)
		if err != nil {
			return err
		}

		libs, err := reg.List(cmd.Context())
		if err != nil {
			return err
		}

		if listJSON {
			data, err := json.MarshalIndent(libs, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling library list: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		printLibraries(cmd, libs)
		return nil
	},
}

func printLibraries(cmd *cobra.Command, libs []project.Summary) {
	out := cmd.OutOrStdout()
	if len(libs) == 0 {
		fmt.Fprintln(out, "No libraries installed!")
		return
	}
	fmt.Fprintln(out, ui.TitleStyle.Render("Installed libraries:"))
	for _, l := range libs {
		fmt.Fprintf(out, "  %s -> %s %s\n", ui.NameStyle.Render(l.Name), displayVersion(l.Version),
			ui.MutedStyle.Render(fmt.Sprintf("(%s, %s)", l.Kind, l.Source)))
	}
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return "v" + strings.TrimPrefix(v, "v")
}
