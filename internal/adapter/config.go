package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	AI       AIConfig       `mapstructure:"ai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig holds the flight search API settings
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Host    string        `mapstructure:"host"` // Sent as x-rapidapi-host
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"` // 0 disables retry
	Backoff time.Duration `mapstructure:"backoff"`
}

// AIConfig holds the comparison model settings
type AIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// StorageConfig selects the durable store
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // bolt, sqlite or memory
	Path   string `mapstructure:"path"`
}

// CacheConfig tunes the search result cache
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// UIConfig holds UI defaults
type UIConfig struct {
	DefaultSort  string `mapstructure:"default_sort"`
	DefaultGroup string `mapstructure:"default_group"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL: "https://google-flights2.p.rapidapi.com",
			Host:    "google-flights2.p.rapidapi.com",
			Timeout: 30 * time.Second,
			Backoff: 500 * time.Millisecond,
		},
		AI: AIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4.1-mini",
		},
		Storage: StorageConfig{
			Driver: "bolt",
			Path:   defaultDataPath(),
		},
		Cache: CacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 200,
		},
		UI: UIConfig{
			DefaultGroup: "none",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "flightdeck.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "flightdeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "flightdeck")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	if dir := os.Getenv("FLIGHTDECK_CONFIG_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "flightdeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "flightdeck")
	}
}

// LoadConfig loads configuration from file and environment.
// Environment variables use the FLIGHTDECK_ prefix, e.g. FLIGHTDECK_PROVIDER_API_KEY.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides
	v.SetEnvPrefix("FLIGHTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv applies during Unmarshal
// even when the key is absent from the file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"provider.base_url", "provider.host", "provider.api_key",
		"provider.timeout", "provider.retries", "provider.backoff",
		"ai.base_url", "ai.api_key", "ai.model",
		"storage.driver", "storage.path",
		"cache.ttl", "cache.max_entries",
		"ui.default_sort", "ui.default_group",
		"logging.file", "logging.level",
	} {
		_ = v.BindEnv(key)
	}
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to keep snake_case key names
	v.Set("provider.base_url", cfg.Provider.BaseURL)
	v.Set("provider.host", cfg.Provider.Host)
	v.Set("provider.api_key", cfg.Provider.APIKey)
	v.Set("provider.timeout", cfg.Provider.Timeout.String())
	v.Set("provider.retries", cfg.Provider.Retries)
	v.Set("provider.backoff", cfg.Provider.Backoff.String())

	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("ai.api_key", cfg.AI.APIKey)
	v.Set("ai.model", cfg.AI.Model)

	v.Set("storage.driver", cfg.Storage.Driver)
	v.Set("storage.path", cfg.Storage.Path)

	v.Set("cache.ttl", cfg.Cache.TTL.String())
	v.Set("cache.max_entries", cfg.Cache.MaxEntries)

	v.Set("ui.default_sort", cfg.UI.DefaultSort)
	v.Set("ui.default_group", cfg.UI.DefaultGroup)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigFilePath returns where SaveConfig writes
func ConfigFilePath() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// IsConfigured returns true if the search API key is set
func (c *Config) IsConfigured() bool {
	return c.Provider.APIKey != ""
}

// HasAI returns true if AI comparison is available
func (c *Config) HasAI() bool {
	return c.AI.APIKey != ""
}
