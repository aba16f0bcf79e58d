package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/esp8266-setup/esp8266-setup/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyAuthor      = "author"
	KeyLicense     = "license"
	KeyCatalogDir  = "catalog_dir"
	KeyCatalogRepo = "catalog_repo"
	KeyConverter   = "converter"
	KeyVerbose     = "verbose"
)

// DefaultLicense is the license written into new libraries.
const DefaultLicense = "BSD-2-Clause"

// Keys lists every key understood by the tool.
var Keys = []string{KeyAuthor, KeyLicense, KeyCatalogDir, KeyCatalogRepo, KeyConverter, KeyVerbose}

// Dir returns the path to the config directory (~/.esp8266-setup/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// CatalogRepoDir returns the directory the catalog repository is synced into.
func CatalogRepoDir() string {
	return filepath.Join(Dir(), "catalog-repo")
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyLicense, DefaultLicense)
	viper.SetDefault(KeyCatalogRepo, branding.CatalogRepoURL())
	viper.SetDefault(KeyConverter, "auto")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Author returns the configured library author, falling back to the
// current OS user.
func Author() string {
	if v := viper.GetString(KeyAuthor); v != "" {
		return v
	}
	return CurrentUser()
}

// License returns the license for new libraries.
func License() string {
	if v := viper.GetString(KeyLicense); v != "" {
		return v
	}
	return DefaultLicense
}

// CatalogDir returns the user catalog directory, or "" when none is configured.
func CatalogDir() string {
	return viper.GetString(KeyCatalogDir)
}

// CatalogRepoURL returns the git URL the catalog is synced from.
func CatalogRepoURL() string {
	if v := viper.GetString(KeyCatalogRepo); v != "" {
		return v
	}
	return branding.CatalogRepoURL()
}

// Converter returns the conversion runtime: "auto", "native" or "virtual".
func Converter() string {
	if v := viper.GetString(KeyConverter); v != "" {
		return v
	}
	return "auto"
}

// Verbose reports whether debug logging is enabled in the config.
func Verbose() bool {
	return viper.GetBool(KeyVerbose)
}

// CurrentUser returns the login name of the user running the tool.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		// Windows reports DOMAIN\user.
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, env := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "unknown"
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
