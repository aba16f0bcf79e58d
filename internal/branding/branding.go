// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork only has to edit the YAML.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	GitHubRepo     string `yaml:"github_repo"`
	CatalogRepoURL string `yaml:"catalog_repo_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "esp8266-setup",
			DisplayName:    "ESP8266 Setup",
			Description:    "Project scaffolding and library manager for ESP8266 firmware",
			HomeDir:        ".esp8266-setup",
			EnvPrefix:      "ESP8266_SETUP",
			GitHubRepo:     "esp8266-setup/esp8266-setup",
			CatalogRepoURL: "https://github.com/esp8266-setup/library-catalog.git",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "esp8266-setup").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".esp8266-setup").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "ESP8266_SETUP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string of the tool itself.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// CatalogRepoURL returns the default git URL of the library catalog.
func CatalogRepoURL() string { load(); return defaults.CatalogRepoURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("catalog_dir") → "ESP8266_SETUP_CATALOG_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
