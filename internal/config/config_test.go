package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazytable/internal/models"
)

// isolate keeps the user's real config directory out of the search path
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, GetDefaults(), cfg)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
database:
  driver: sqlite3
  path: /tmp/items.db
table:
  name: Items
  page_size: 32
  order_by: ["Title", "ItemId desc"]
  section: substr(Title,1,1)
  aliases:
    t: [Title]
    text: [Title, Details]
ui:
  theme: catppuccin
history:
  enabled: false
log:
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/items.db", cfg.Database.Path)
	assert.Equal(t, "Items", cfg.Table.Name)
	assert.Equal(t, 32, cfg.Table.PageSize)
	assert.Equal(t, []string{"Title", "ItemId desc"}, cfg.Table.OrderBy)
	assert.Equal(t, "substr(Title,1,1)", cfg.Table.Section)
	assert.Equal(t, []string{"Title", "Details"}, cfg.Table.Aliases["text"])
	assert.Equal(t, "catppuccin", cfg.UI.Theme)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 1000, cfg.History.MaxEntries)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "table:\n  page_size: 32\n")
	t.Setenv("LAZYTABLE_TABLE_PAGE_SIZE", "64")
	t.Setenv("LAZYTABLE_TABLE_NAME", "Tasks")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Table.PageSize)
	assert.Equal(t, "Tasks", cfg.Table.Name)
}

func TestLoadFlagsOverride(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "table:\n  name: Items\n  page_size: 32\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("table", "", "")
	flags.Int("page-size", 16, "")
	flags.StringSlice("order-by", nil, "")
	flags.String("theme", "", "")
	require.NoError(t, flags.Parse([]string{"--page-size=8", "--order-by=Title,Rank desc"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Table.PageSize)
	assert.Equal(t, []string{"Title", "Rank desc"}, cfg.Table.OrderBy)
	// unset flags leave file values alone
	assert.Equal(t, "Items", cfg.Table.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"page size", func(c *Config) { c.Table.PageSize = 0 }},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	require.NoError(t, GetDefaults().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "table:\n  page_size: -1\n")

	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "page_size")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestHistoryPath(t *testing.T) {
	isolate(t)

	cfg := GetDefaults()
	cfg.History.Path = "/var/tmp/h.db"
	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/h.db", path)

	cfg.History.Path = ""
	path, err = cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "history.db", filepath.Base(path))
	assert.DirExists(t, filepath.Dir(path))
}

func TestConnectionKeyring(t *testing.T) {
	keyring.MockInit()

	cfg := GetDefaults()
	cfg.Database.Driver = "postgres"
	cfg.Database.User = "me"
	cfg.Database.Database = "app"

	// keyring disabled
	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "", conn.Password)

	cfg.Database.UseKeyring = true
	conn, err = cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "", conn.Password, "missing entry is not an error")

	require.NoError(t, StorePassword(cfg.Database.ConnectionConfig, "s3cret"))
	conn, err = cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", conn.Password)

	// an explicit password wins
	cfg.Database.Password = "given"
	conn, err = cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "given", conn.Password)
}

func TestKeyringUser(t *testing.T) {
	conn := models.ConnectionConfig{User: "me", Host: "db", Port: 5432, Database: "app"}
	assert.Equal(t, "me@db:5432/app", keyringUser(conn))
}
