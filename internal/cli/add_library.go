package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/project"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	addDefinition string
	addNoDeps     bool
)

func init() {
	addLibraryCmd.Flags().StringVar(&addDefinition, "definition", "", "Library definition for a git or archive source that is not a native library")
	addLibraryCmd.Flags().BoolVar(&addNoDeps, "no-deps", false, "Add only the given library, skip its dependencies")
	rootCmd.AddCommand(addLibraryCmd)
}

var addLibraryCmd = &cobra.Command{
	Use:   "add-library <reference>",
	Short: "Add a library to the project",
	Long: `Fetch a library into .libs/, install it into lib/ and add it to SRC_LIBS.
Dependencies declared in its library.json are added as well unless --no-deps
is given. Run from the project directory.

A reference is one of:
  git+<url>@<ref>      git repository at a branch, tag or commit
  http(s)://...        .zip, .tar.gz, .tgz or .tar archive
  <name>.json          local library definition
  <name>               installed library or catalog entry

Examples:
  esp8266-setup add-library jsmn
  esp8266-setup add-library git+https://github.com/esp8266-setup/minic.git@master
  esp8266-setup add-library https://example.com/lib.tar.gz --definition lib.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cmd, wd)
		if err != nil {
			return err
		}

		res, err := reg.Add(cmd.Context(), args[0], project.AddOptions{
			Definition: addDefinition,
			NoDeps:     addNoDeps,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success("Added "+describe(res.Library)))
		for _, dep := range res.Dependencies {
			fmt.Fprintf(out, "  %s\n", "dependency "+describe(dep))
		}
		printWarnings(cmd, res.Warnings)
		return nil
	},
}
