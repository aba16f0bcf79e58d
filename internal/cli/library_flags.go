package cli

import (
	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/manifest"
)

// libraryFlags are the definition fields shared by start-library and
// modify-library.
type libraryFlags struct {
	name            string
	author          string
	license         string
	url             string
	dependencies    string
	sdkDependencies string
	cflags          string
	ldflags         string
	includes        string
}

func (f *libraryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.author, "author", "", "Library author (default: config author or current user)")
	cmd.Flags().StringVar(&f.license, "license", "", "Library license (default: config license)")
	cmd.Flags().StringVar(&f.url, "url", "", "Upstream URL (git+<url>@<ref> or http(s)://)")
	cmd.Flags().StringVar(&f.dependencies, "dependencies", "", "Libraries this library depends on (comma-separated)")
	cmd.Flags().StringVar(&f.sdkDependencies, "sdk-dependencies", "", "SDK components to include, e.g. lwip,json (comma-separated)")
	cmd.Flags().StringVar(&f.cflags, "cflags", "", "Extra CFLAGS")
	cmd.Flags().StringVar(&f.ldflags, "ldflags", "", "Extra LDFLAGS")
	cmd.Flags().StringVar(&f.includes, "include", "", "Extra include flags, e.g. -Ivendor")
}

// overrides returns the fields whose flags were given on the command line.
func (f *libraryFlags) overrides(cmd *cobra.Command) manifest.Overrides {
	var o manifest.Overrides
	set := func(flag string, dst **string, val *string) {
		if cmd.Flags().Changed(flag) {
			*dst = val
		}
	}
	set("name", &o.Name, &f.name)
	set("author", &o.Author, &f.author)
	set("license", &o.License, &f.license)
	set("url", &o.URL, &f.url)
	set("dependencies", &o.Dependencies, &f.dependencies)
	set("sdk-dependencies", &o.SDKDependencies, &f.sdkDependencies)
	set("cflags", &o.CFlags, &f.cflags)
	set("ldflags", &o.LDFlags, &f.ldflags)
	set("include", &o.Includes, &f.includes)
	return o
}
