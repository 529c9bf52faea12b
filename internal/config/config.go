package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazytable/internal/models"
)

const (
	appName = "lazytable"
	// keyringService is the service name passwords are stored under
	keyringService = "lazytable"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Table    TableConfig    `mapstructure:"table"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	models.ConnectionConfig `mapstructure:",squash"`
	// UseKeyring looks the password up in the OS keyring when it is empty
	UseKeyring bool `mapstructure:"use_keyring"`
}

type TableConfig struct {
	Name     string              `mapstructure:"name"`
	PageSize int                 `mapstructure:"page_size"`
	OrderBy  []string            `mapstructure:"order_by"`
	Section  string              `mapstructure:"section"`
	Aliases  map[string][]string `mapstructure:"aliases"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			ConnectionConfig: models.ConnectionConfig{
				Driver:  "sqlite3",
				Host:    "localhost",
				Port:    5432,
				SSLMode: "prefer",
			},
		},
		Table: TableConfig{
			PageSize: 16,
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.use_keyring", false)
	// empty defaults let AutomaticEnv see these keys
	for _, key := range []string{
		"database.name", "database.dsn", "database.path", "database.database",
		"database.user", "database.password", "table.name", "table.section",
		"history.path", "log.file",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("table.page_size", d.Table.PageSize)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("log.level", d.Log.Level)
}

// Load loads configuration from path, or from the first config.yaml found
// in the search paths when path is empty. Environment variables prefixed
// with LAZYTABLE_ and flags override file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"driver":    "database.driver",
	"db":        "database.path",
	"dsn":       "database.dsn",
	"table":     "table.name",
	"page-size": "table.page_size",
	"order-by":  "table.order_by",
	"section":   "table.section",
	"theme":     "ui.theme",
	"log-level": "log.level",
	"log-file":  "log.file",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Validate reports configuration errors
func (c *Config) Validate() error {
	if c.Table.PageSize < 1 {
		return fmt.Errorf("table.page_size must be positive, got %d", c.Table.PageSize)
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Connection returns the connection settings, filling the password from
// the OS keyring when enabled
func (c *Config) Connection() (models.ConnectionConfig, error) {
	conn := c.Database.ConnectionConfig
	if conn.Password != "" || !c.Database.UseKeyring || conn.Driver == "sqlite3" || conn.Driver == "sqlite" {
		return conn, nil
	}

	password, err := keyring.Get(keyringService, keyringUser(conn))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return conn, nil
		}
		return conn, fmt.Errorf("failed to read password from keyring: %w", err)
	}
	conn.Password = password
	return conn, nil
}

// StorePassword saves the connection password in the OS keyring
func StorePassword(conn models.ConnectionConfig, password string) error {
	if err := keyring.Set(keyringService, keyringUser(conn), password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

func keyringUser(conn models.ConnectionConfig) string {
	return fmt.Sprintf("%s@%s:%d/%s", conn.User, conn.Host, conn.Port, conn.Database)
}

// HistoryPath returns the history database path, defaulting into the
// user config directory
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// ParseLevel parses a log level name
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log.level %q", s)
	}
	return level, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
