package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName = "vidshare"

	// DefaultCapacity mirrors history.MaxEntries
	DefaultCapacity = 50

	// DefaultWatchURL opens a source video on the external platform
	DefaultWatchURL = "https://www.youtube.com/watch?v=%s"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	History HistoryConfig `mapstructure:"history"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig controls where the history database lives
type StorageConfig struct {
	Dir         string        `mapstructure:"dir"`
	Profile     string        `mapstructure:"profile"`      // Separate history per profile
	MemoryOnly  bool          `mapstructure:"memory_only"`  // Keep history in memory only
	OpenTimeout time.Duration `mapstructure:"open_timeout"` // Wait for the file lock
}

// HistoryConfig holds recently viewed settings
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command  string   `mapstructure:"command"`
	Args     []string `mapstructure:"args"`
	WatchURL string   `mapstructure:"watch_url"` // e.g. "https://www.youtube.com/watch?v=%s"
}

// UIConfig holds UI configuration
type UIConfig struct {
	RelativeTimes bool `mapstructure:"relative_times"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:         defaultDataPath(),
			OpenTimeout: time.Second,
		},
		History: HistoryConfig{
			Capacity: DefaultCapacity,
		},
		Player: PlayerConfig{
			Args:     []string{},
			WatchURL: DefaultWatchURL,
		},
		UI: UIConfig{
			RelativeTimes: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), defaultConfigPath(), ".")
}

// LoadConfigFrom loads configuration searching only the given directories
func LoadConfigFrom(paths ...string) (*Config, error) {
	return load(viper.New(), paths...)
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. VIDSHARE_HISTORY_CAPACITY
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.profile", cfg.Storage.Profile)
	v.SetDefault("storage.memory_only", cfg.Storage.MemoryOnly)
	v.SetDefault("storage.open_timeout", cfg.Storage.OpenTimeout)
	v.SetDefault("history.capacity", cfg.History.Capacity)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("player.watch_url", cfg.Player.WatchURL)
	v.SetDefault("ui.relative_times", cfg.UI.RelativeTimes)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate fixes up recoverable values and rejects unusable ones
func (c *Config) Validate() error {
	if c.History.Capacity < 1 {
		c.History.Capacity = DefaultCapacity
	}
	if c.Storage.OpenTimeout <= 0 {
		c.Storage.OpenTimeout = time.Second
	}
	if c.Player.WatchURL == "" {
		c.Player.WatchURL = DefaultWatchURL
	}
	if strings.Count(c.Player.WatchURL, "%s") != 1 {
		return fmt.Errorf("player.watch_url must contain exactly one %%s: %q", c.Player.WatchURL)
	}
	if !c.Storage.MemoryOnly && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required unless storage.memory_only is set")
	}
	return nil
}
