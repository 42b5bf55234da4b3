package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// appDirName is the directory under ~/.config that holds all client state.
const appDirName = "marketplace"

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the origin of the marketplace API server.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PushConfig holds the real-time notification channel settings.
type PushConfig struct {
	Path              string `mapstructure:"path" yaml:"path"`
	Topic             string `mapstructure:"topic" yaml:"topic"`
	ReconnectDelaySec int    `mapstructure:"reconnect_delay_sec" yaml:"reconnect_delay_sec"`
}

// NotificationsConfig controls the periodic notification reconcile.
type NotificationsConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// StorageConfig locates the local preferences database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Push          PushConfig          `mapstructure:"push" yaml:"push"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
	Storage       StorageConfig       `mapstructure:"storage" yaml:"storage"`
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// ReconnectDelay returns the wait between push reconnect attempts.
func (c *AppConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.Push.ReconnectDelaySec) * time.Second
}

// PollInterval returns the notification reconcile interval.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Notifications.PollIntervalSec) * time.Second
}

// ConfigDir returns ~/.config/marketplace, or the working directory when
// the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/marketplace/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 30,
		},
		Push: PushConfig{
			Path:              "/ws/websocket",
			Topic:             "/topic/notifications",
			ReconnectDelaySec: 5,
		},
		Notifications: NotificationsConfig{
			PollIntervalSec: 120,
		},
		Display: DisplayConfig{
			PageSize: 9,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "marketplace.log"),
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(ConfigDir(), "marketplace.db"),
		},
	}
}

// setDefaults mirrors defaultAppConfig so missing keys resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("push.path", d.Push.Path)
	v.SetDefault("push.topic", d.Push.Topic)
	v.SetDefault("push.reconnect_delay_sec", d.Push.ReconnectDelaySec)
	v.SetDefault("notifications.poll_interval_sec", d.Notifications.PollIntervalSec)
	v.SetDefault("display.page_size", d.Display.PageSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. MARKETPLACE_API_URL
// overrides api.base_url in either case.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.BindEnv("api.base_url", "MARKETPLACE_API_URL"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = 9
	}
	if cfg.Push.ReconnectDelaySec <= 0 {
		cfg.Push.ReconnectDelaySec = 5
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("push", cfg.Push)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
