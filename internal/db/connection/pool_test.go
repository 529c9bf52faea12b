package connection

import (
	"testing"

	"github.com/rebeliceyang/lazytable/internal/models"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no placeholders", `SELECT * FROM "Items"`, `SELECT * FROM "Items"`},
		{"numbered in order", `SELECT * FROM t WHERE a = ? AND b LIKE ?`, `SELECT * FROM t WHERE a = $1 AND b LIKE $2`},
		{"escape clause", `"Title" LIKE ? ESCAPE ?`, `"Title" LIKE $1 ESCAPE $2`},
		{"is", `"Done" IS ?`, `"Done" IS NOT DISTINCT FROM $1`},
		{"is after expression", `substr(Title,1,1) IS ?`, `substr(Title,1,1) IS NOT DISTINCT FROM $1`},
		{"lower case is", `(a is ? OR b = ?)`, `(a is NOT DISTINCT FROM $1 OR b = $2)`},
		{"word ending in is", `SELECT THIS ?`, `SELECT THIS $1`},
		{"string literal", `SELECT '?', ?`, `SELECT '?', $1`},
		{"quoted identifier", `SELECT "we?rd" FROM t WHERE x = ?`, `SELECT "we?rd" FROM t WHERE x = $1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rebind(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name   string
		config models.ConnectionConfig
		want   string
	}{
		{
			name:   "dsn wins",
			config: models.ConnectionConfig{DSN: "postgres://u@h/db", Host: "ignored"},
			want:   "postgres://u@h/db",
		},
		{
			name:   "default ssl mode",
			config: models.ConnectionConfig{Host: "localhost", Port: 5432, User: "me", Database: "app"},
			want:   "host=localhost port=5432 user=me database=app sslmode=prefer",
		},
		{
			name:   "password",
			config: models.ConnectionConfig{Host: "db", Port: 6432, User: "me", Database: "app", SSLMode: "disable", Password: "pw"},
			want:   "host=db port=6432 user=me database=app sslmode=disable password=pw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildConnectionString(tt.config); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
