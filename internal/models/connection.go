// Package models holds the data types shared between configuration and
// the connection layer.
package models

// ConnectionConfig describes how to reach the database holding the table
type ConnectionConfig struct {
	Name     string `mapstructure:"name"`
	Driver   string `mapstructure:"driver"` // "postgres" or "sqlite3"
	DSN      string `mapstructure:"dsn"`
	Path     string `mapstructure:"path"` // SQLite database file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ConnectionState represents the current connection state
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Failed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
