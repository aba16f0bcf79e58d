package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/config"
	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
	"github.com/esp8266-setup/esp8266-setup/internal/scaffold"
)

var startLibraryFlags libraryFlags

func init() {
	startLibraryFlags.register(startLibraryCmd)
	rootCmd.AddCommand(startLibraryCmd)
}

var startLibraryCmd = &cobra.Command{
	Use:   "start-library <name>",
	Short: "Create a new library",
	Long: `Create a new library directory with a Makefile, library.json, README.md,
LICENSE.txt, src/<name>.c and include/<name>.h.

Examples:
  esp8266-setup start-library ringbuf
  esp8266-setup start-library mqtt --sdk-dependencies lwip,espconn --dependencies minic`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := &manifest.Library{
			Name:    filepath.Base(filepath.Clean(args[0])),
			Author:  config.Author(),
			License: config.License(),
		}
		lib.Apply(startLibraryFlags.overrides(cmd))

		result, err := scaffold.StartLibrary(args[0], lib)
		if err != nil {
			return err
		}
		printResult(cmd, "library", result)
		return nil
	},
}
