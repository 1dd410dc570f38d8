package config

import (
	"os"
	"path/filepath"
)

const appName = "daybook"

func ConfigDir() string {
	if v := os.Getenv("DAYBOOK_CONFIG_DIR"); v != "" {
		return v
	}
	return filepath.Join(userConfigDir(), appName)
}

func CacheDir() string {
	if v := os.Getenv("DAYBOOK_CACHE_DIR"); v != "" {
		return v
	}
	return filepath.Join(userCacheDir(), appName)
}

func ConfigFile() string   { return filepath.Join(ConfigDir(), "config.toml") }
func DatabaseFile() string { return filepath.Join(CacheDir(), "records.db") }
func MetadataDir() string  { return filepath.Join(CacheDir(), "metadata") }

func userConfigDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return d
	}
	return filepath.Join(homeDir(), ".config")
}

func userCacheDir() string {
	if d, err := os.UserCacheDir(); err == nil {
		return d
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if d, err := os.UserHomeDir(); err == nil {
		return d
	}
	return "."
}
