package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var modifyLibraryFlags libraryFlags

func init() {
	modifyLibraryFlags.register(modifyLibraryCmd)
	modifyLibraryCmd.Flags().StringVar(&modifyLibraryFlags.name, "name", "", "Rename the library")
	rootCmd.AddCommand(modifyLibraryCmd)
}

var modifyLibraryCmd = &cobra.Command{
	Use:   "modify-library",
	Short: "Change the settings of the current library",
	Long: `Rewrite library.json and the Makefile of the library in the current
directory. Only the settings given on the command line change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}
		result, err := scaffold.ModifyLibrary(wd, modifyLibraryFlags.overrides(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Updated library.json and Makefile"))
		printWarnings(cmd, result.Warnings)
		return nil
	},
}
