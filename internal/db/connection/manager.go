package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/db/sqlstore"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// Manager manages multiple database connections
type Manager struct {
	connections map[string]*Connection
	active      string
	mu          sync.RWMutex
}

// Connection wraps an executor with metadata
type Connection struct {
	ID          string
	Config      models.ConnectionConfig
	Dialect     db.Dialect
	Executor    db.Executor
	State       models.ConnectionState
	ConnectedAt time.Time
	Error       error

	close func() error
}

// NewManager creates a new connection manager
func NewManager() *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
	}
}

// Connect establishes a new connection and makes it the active one
func (m *Manager) Connect(ctx context.Context, config models.ConnectionConfig) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateConnectionID(config)
	conn := &Connection{
		ID:     id,
		Config: config,
		State:  models.Connecting,
	}
	m.connections[id] = conn

	switch db.Dialect(config.Driver) {
	case db.SQLite, "sqlite":
		store, err := sqlstore.Open(config.Path)
		if err != nil {
			conn.State = models.Failed
			conn.Error = err
			return conn, err
		}
		conn.Dialect = db.SQLite
		conn.Executor = store
		conn.close = store.Close
	case db.Postgres, "":
		pool, err := NewPool(ctx, config)
		if err != nil {
			conn.State = models.Failed
			conn.Error = err
			return conn, err
		}
		conn.Dialect = db.Postgres
		conn.Executor = pool
		conn.close = func() error { pool.Close(); return nil }
	default:
		err := fmt.Errorf("unsupported driver %q", config.Driver)
		conn.State = models.Failed
		conn.Error = err
		return conn, err
	}

	conn.State = models.Connected
	conn.ConnectedAt = time.Now()
	m.active = id

	return conn, nil
}

// Add registers an already open executor under id and makes it active
func (m *Manager) Add(id string, dialect db.Dialect, exec db.Executor) *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn := &Connection{
		ID:          id,
		Dialect:     dialect,
		Executor:    exec,
		State:       models.Connected,
		ConnectedAt: time.Now(),
	}
	m.connections[id] = conn
	m.active = id
	return conn
}

// Disconnect closes a connection
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	var err error
	if conn.close != nil {
		err = conn.close()
	}
	conn.State = models.Disconnected

	delete(m.connections, id)

	if m.active == id {
		m.active = ""
	}

	return err
}

// CloseAll closes every connection
func (m *Manager) CloseAll() error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, id := range ids {
		if err := m.Disconnect(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetActive returns the active connection
func (m *Manager) GetActive() (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == "" {
		return nil, fmt.Errorf("no active connection")
	}

	conn, ok := m.connections[m.active]
	if !ok {
		return nil, fmt.Errorf("active connection not found")
	}

	return conn, nil
}

// SetActive sets the active connection
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connections[id]; !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	m.active = id
	return nil
}

// GetAll returns all connections
func (m *Manager) GetAll() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]*Connection, 0, len(m.connections))
	for _, conn := range m.connections {
		conns = append(conns, conn)
	}
	return conns
}

// generateConnectionID creates a unique connection ID
func generateConnectionID(config models.ConnectionConfig) string {
	if config.Name != "" {
		return config.Name
	}
	if config.Driver == string(db.SQLite) || config.Driver == "sqlite" {
		return "sqlite:" + config.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", config.User, config.Host, config.Port, config.Database)
}
