package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/makefile"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/project"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	projectFlashLayout string
	projectSDKLibs     string
	projectLibraries   []string
)

func init() {
	startProjectCmd.Flags().StringVar(&projectFlashLayout, "flash-layout", makefile.DefaultFlashLayout,
		"Flash layout ("+strings.Join(makefile.FlashLayoutNames(), ", ")+")")
	startProjectCmd.Flags().StringVar(&projectSDKLibs, "sdk-libs", "", "SDK libraries to link with (comma-separated)")
	startProjectCmd.Flags().StringArrayVar(&projectLibraries, "library", nil, "Library to add after creating the project (repeatable)")
	rootCmd.AddCommand(startProjectCmd)
}

var startProjectCmd = &cobra.Command{
	Use:   "start-project <name>",
	Short: "Create a new firmware project",
	Long: `Create a new project directory with a Makefile, src/main.c, README.md and
LICENSE.txt, plus empty lib/ and .libs/ directories for libraries.

Examples:
  esp8266-setup start-project blinky
  esp8266-setup start-project sensor --flash-layout 16m --sdk-libs json,ssl --library minic`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scaffold.ProjectOptions{FlashLayout: projectFlashLayout}
		if cmd.Flags().Changed("sdk-libs") {
			opts.SDKLibs = manifest.SplitList(projectSDKLibs)
		}

		result, err := scaffold.StartProject(args[0], opts)
		if err != nil {
			return err
		}
		printResult(cmd, "project", result)

		if len(projectLibraries) == 0 {
			return nil
		}
		reg, err := buildRegistry(cmd, result.OutputDir)
		if err != nil {
			return err
		}
		for _, ref := range projectLibraries {
			res, err := reg.Add(cmd.Context(), ref, project.AddOptions{})
			if err != nil {
				return fmt.Errorf("adding %s: %w", ref, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Added "+describe(res.Library)))
			printWarnings(cmd, res.Warnings)
		}
		return nil
	},
}
