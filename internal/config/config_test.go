package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetAndGet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load()
	if err := Set(KeyAuthor, "Jane Doe"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := Get(KeyAuthor); got != "Jane Doe" {
		t.Errorf("Get(author) = %q, want %q", got, "Jane Doe")
	}
	if _, err := os.Stat(filepath.Join(home, ".esp8266-setup", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
	if got := Author(); got != "Jane Doe" {
		t.Errorf("Author() = %q, want %q", got, "Jane Doe")
	}
}

func TestSetUnknownKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	if err := Set("flash", "4m"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load()
	if got := License(); got != DefaultLicense {
		t.Errorf("License() = %q, want %q", got, DefaultLicense)
	}
	if got := Converter(); got != "auto" {
		t.Errorf("Converter() = %q, want %q", got, "auto")
	}
	if CatalogRepoURL() == "" {
		t.Error("CatalogRepoURL() should fall back to branding")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ESP8266_SETUP_CATALOG_DIR", "/opt/catalog")
	viper.Reset()
	t.Cleanup(viper.Reset)

	Load()
	if got := CatalogDir(); got != "/opt/catalog" {
		t.Errorf("CatalogDir() = %q, want %q", got, "/opt/catalog")
	}
}

func TestCurrentUser(t *testing.T) {
	if CurrentUser() == "" {
		t.Error("CurrentUser() should never be empty")
	}
}
