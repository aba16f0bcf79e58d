package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

func init() {
	rootCmd.AddCommand(removeLibraryCmd)
}

var removeLibraryCmd = &cobra.Command{
	Use:   "remove-library <name>",
	Short: "Remove a library from the project",
	Long:  `Delete lib/<name> and .libs/<name> and drop the library from SRC_LIBS.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := workingDir()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cmd, wd)
		if err != nil {
			return err
		}

		if err := reg.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+ui.NameStyle.Render(args[0])))
		return nil
	},
}
