package connection

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/db/sqlstore"
	"github.com/rebeliceyang/lazytable/internal/models"
)

func TestManagerConnectSQLite(t *testing.T) {
	m := NewManager()
	path := filepath.Join(t.TempDir(), "app.db")

	conn, err := m.Connect(context.Background(), models.ConnectionConfig{Driver: "sqlite3", Path: path})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if conn.ID != "sqlite:"+path {
		t.Errorf("expected id sqlite:%s, got %s", path, conn.ID)
	}
	if conn.State != models.Connected {
		t.Errorf("expected state connected, got %s", conn.State)
	}
	if conn.Dialect != db.SQLite {
		t.Errorf("expected dialect %s, got %s", db.SQLite, conn.Dialect)
	}

	active, err := m.GetActive()
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if active != conn {
		t.Error("expected the new connection to be active")
	}

	v, err := active.Executor.QueryScalar(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("QueryScalar failed: %v", err)
	}
	if v != int64(1) {
		t.Errorf("expected 1, got %v", v)
	}

	if err := m.CloseAll(); err != nil {
		t.Fatalf("CloseAll failed: %v", err)
	}
	if conn.State != models.Disconnected {
		t.Errorf("expected state disconnected, got %s", conn.State)
	}
	if _, err := m.GetActive(); err == nil {
		t.Error("expected no active connection after CloseAll")
	}
}

func TestManagerUnsupportedDriver(t *testing.T) {
	m := NewManager()

	conn, err := m.Connect(context.Background(), models.ConnectionConfig{Name: "other", Driver: "mysql"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if conn.State != models.Failed {
		t.Errorf("expected state failed, got %s", conn.State)
	}
	if conn.Error != err {
		t.Errorf("expected the error to be kept on the connection")
	}
	if _, err := m.GetActive(); err == nil {
		t.Error("a failed connection must not become active")
	}
}

func TestManagerAddAndSwitch(t *testing.T) {
	m := NewManager()
	first := m.Add("first", db.SQLite, sqlstore.New(nil))
	second := m.Add("second", db.SQLite, sqlstore.New(nil))

	if got := len(m.GetAll()); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	active, _ := m.GetActive()
	if active != second {
		t.Error("expected the last added connection to be active")
	}

	if err := m.SetActive("first"); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	active, _ = m.GetActive()
	if active != first {
		t.Error("expected first to be active")
	}

	if err := m.SetActive("missing"); err == nil {
		t.Error("expected error for unknown connection")
	}

	if err := m.Disconnect("first"); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if _, err := m.GetActive(); err == nil {
		t.Error("expected no active connection after disconnecting it")
	}
	if err := m.Disconnect("first"); err == nil {
		t.Error("expected error disconnecting twice")
	}
}

func TestConnectionStateString(t *testing.T) {
	tests := map[models.ConnectionState]string{
		models.Disconnected:        "disconnected",
		models.Connecting:          "connecting",
		models.Connected:           "connected",
		models.Failed:              "failed",
		models.ConnectionState(42): "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
