package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

func init() {
	rootCmd.AddCommand(updateLibraryCmd)
}

var updateLibraryCmd = &cobra.Command{
	Use:   "update-library <reference>",
	Short: "Update a library from its upstream source",
	Long: `Refresh a library's upstream source in .libs/ and rebuild lib/<name>.
Converted libraries are converted again with their stored script.`,
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

		res, err := reg.Update(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		msg := "Updated " + ui.NameStyle.Render(res.Library.Name)
		switch {
		case res.OldVersion != res.NewVersion:
			msg += fmt.Sprintf(" %s -> %s", displayVersion(res.OldVersion), displayVersion(res.NewVersion))
		default:
			msg += " " + displayVersion(res.NewVersion)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(msg))
		if res.Change() < 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warning(fmt.Sprintf("%s was downgraded, upstream now declares an older version", res.Library.Name)))
		}
		return nil
	},
}
