package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/makefile"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	modifyFlashLayout string
	modifySDKLibs     string
)

func init() {
	modifySettingsCmd.Flags().StringVar(&modifyFlashLayout, "flash-layout", "",
		"Flash layout ("+strings.Join(makefile.FlashLayoutNames(), ", ")+")")
	modifySettingsCmd.Flags().StringVar(&modifySDKLibs, "sdk-libs", "", "SDK libraries to link with (comma-separated)")
	rootCmd.AddCommand(modifySettingsCmd)
}

var modifySettingsCmd = &cobra.Command{
	Use:   "modify-settings",
	Short: "Change the settings of the current project",
	Long: `Rewrite the project Makefile in the current directory. Only the settings
given on the command line change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var s makefile.ProjectSettings
		if cmd.Flags().Changed("flash-layout") {
			s.FlashLayout = &modifyFlashLayout
		}
		if cmd.Flags().Changed("sdk-libs") {
			s.SDKLibs = manifest.SplitList(modifySDKLibs)
		}

		wd, err := workingDir()
		if err != nil {
			return err
		}
		if err := scaffold.ModifyProject(wd, s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Updated Makefile"))
		return nil
	},
}
