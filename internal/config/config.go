package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

type FetchConfig struct {
	Timeout           float64 `toml:"timeout" json:"timeout"`
	MaxConcurrent     int     `toml:"max_concurrent" json:"max_concurrent"`
	DefaultWindowDays int     `toml:"default_window_days" json:"default_window_days"`
}

// BoundariesConfig sets the logical-day boundary hours. Tasks and location
// visits roll over at 4am so late-night work counts toward the evening's
// day; sleep rolls over at 4pm so an overnight session stays on the day it
// started.
type BoundariesConfig struct {
	TaskHour        int `toml:"task_hour" json:"task_hour"`
	SleepHour       int `toml:"sleep_hour" json:"sleep_hour"`
	ActiveStartHour int `toml:"active_start_hour" json:"active_start_hour"`
	ActiveEndHour   int `toml:"active_end_hour" json:"active_end_hour"`
}

type SyncConfig struct {
	Enabled       bool   `toml:"enabled" json:"enabled"`
	NATSURL       string `toml:"nats_url" json:"nats_url"`
	SubjectPrefix string `toml:"subject_prefix" json:"subject_prefix"`
}

type ProviderConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	BaseURL string `toml:"base_url" json:"base_url"`
	Token   string `toml:"token,omitempty" json:"token,omitempty"`
}

type Config struct {
	Fetch      FetchConfig               `toml:"fetch" json:"fetch"`
	Boundaries BoundariesConfig          `toml:"boundaries" json:"boundaries"`
	Sync       SyncConfig                `toml:"sync" json:"sync"`
	Providers  map[string]ProviderConfig `toml:"providers" json:"providers"`
}

func DefaultConfig() Config {
	return Config{
		Fetch: FetchConfig{
			Timeout:           30.0,
			MaxConcurrent:     4,
			DefaultWindowDays: 30,
		},
		Boundaries: BoundariesConfig{
			TaskHour:        4,
			SleepHour:       16,
			ActiveStartHour: 6,
			ActiveEndHour:   24,
		},
		Sync: SyncConfig{
			Enabled:       false,
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "daybook",
		},
		Providers: make(map[string]ProviderConfig),
	}
}

func (c Config) clone() Config {
	out := c
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for k, v := range c.Providers {
		out.Providers[k] = v
	}
	return out
}

// IsProviderEnabled reports whether a provider should take part in
// refreshes. Providers absent from the config are disabled: every remote
// needs at least a base URL before it is useful.
func (c Config) IsProviderEnabled(providerID string) bool {
	pc, ok := c.Providers[providerID]
	return ok && pc.Enabled
}

func (c Config) Provider(providerID string) ProviderConfig {
	return c.Providers[providerID]
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

func Get() Config {
	configMu.RLock()
	if c := globalConfig; c != nil {
		configMu.RUnlock()
		return c.clone()
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig != nil {
		return globalConfig.clone()
	}
	c, _ := Load("")
	globalConfig = &c
	return c.clone()
}

// Init loads the config from disk, replacing any cached copy. A malformed
// file surfaces an error while still yielding defaults.
func Init() (Config, error) {
	configMu.Lock()
	defer configMu.Unlock()
	c, err := Load("")
	globalConfig = &c
	return c.clone(), err
}

func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFile()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}
