package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"monodo/pkg/keymaps"
)

// Config holds the application configuration
type Config struct {
	// Store selects the backend: "local" (JSON file) or "remote" (REST API).
	Store string `mapstructure:"store"`

	// LocalFile is the JSON file backing the local store.
	LocalFile string `mapstructure:"local_file"`

	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`

	KeyMap  map[string]string `mapstructure:"keymap"`
	Verbose bool              `mapstructure:"verbose"`
}

// DatabaseConfig configures the SQL backend used by the serve command.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	Secret string `mapstructure:"secret"`
}

// APIConfig points the board at a remote server.
type APIConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Load reads the configuration, creating a default config file on first
// run. An empty configPath uses ~/.config/monodo/config.json.
func Load(configPath string) (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	configDir := filepath.Join(homeDir, ".config", "monodo")

	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("store", "local")
	v.SetDefault("local_file", filepath.Join(configDir, "board.json"))
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", filepath.Join(configDir, "board.db"))
	v.SetDefault("server.addr", ":8484")
	v.SetDefault("server.secret", "")
	v.SetDefault("api.url", "http://localhost:8484")
	v.SetDefault("api.token", "")
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("monodo")
	v.AutomaticEnv()

	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, err
		}
		// First run: write the defaults so they are discoverable.
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
