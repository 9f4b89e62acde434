// Package dbsync bulk-imports and exports trie contents against a SQL
// table, the way the teacher's internal/database package manages named
// connections over database/sql — generalized here to back a single table
// of (key, value) rows instead of arbitrary ad hoc queries.
package dbsync

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"datrie/internal/trie"
	"datrie/internal/trieerrors"
)

// Manager tracks a set of live database connections, each identified by a
// generated session id so callers never have to invent or collide on names.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

type conn struct {
	id      string
	dbType  string
	db      *sql.DB
	dsn     string
	created time.Time
}

// NewManager returns an empty connection manager.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]*conn)}
}

func driverFor(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "sqlite-pure":
		// modernc.org/sqlite registers a cgo-free driver under "sqlite",
		// for builds that cannot link mattn/go-sqlite3's C library.
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "mssql", "sqlserver":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("dbsync: unsupported database type %q", dbType)
	}
}

// Connect opens a new connection and returns its session id.
func (m *Manager) Connect(dbType, dsn string) (string, error) {
	driver, err := driverFor(dbType)
	if err != nil {
		return "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return "", trieerrors.Wrap(trieerrors.IoError, err, "dbsync: open %s", dbType)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return "", trieerrors.Wrap(trieerrors.IoError, err, "dbsync: ping %s", dbType)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	id := uuid.NewString()
	m.mu.Lock()
	m.conns[id] = &conn{id: id, dbType: dbType, db: db, dsn: dsn, created: time.Now()}
	m.mu.Unlock()
	return id, nil
}

// Close closes and forgets a connection.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[id]
	if !ok {
		return fmt.Errorf("dbsync: connection %q not found", id)
	}
	delete(m.conns, id)
	return c.db.Close()
}

func (m *Manager) get(id string) (*conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[id]
	if !ok {
		return nil, fmt.Errorf("dbsync: connection %q not found", id)
	}
	return c, nil
}

// EnsureTable creates table (trie_key TEXT primary key, trie_value INTEGER)
// if it does not already exist, using CREATE TABLE IF NOT EXISTS. SQLite and
// PostgreSQL accept this statement; MySQL rejects a TEXT primary key without
// a key length, and SQL Server has no CREATE TABLE IF NOT EXISTS form.
func (m *Manager) EnsureTable(id, table string) error {
	c, err := m.get(id)
	if err != nil {
		return err
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (trie_key TEXT PRIMARY KEY, trie_value INTEGER NOT NULL)`, table)
	_, err = c.db.Exec(ddl)
	if err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "dbsync: create table %s", table)
	}
	return nil
}

// Export writes every (key, value) pair under prefix into table, one
// transaction for the whole batch so a failed export leaves the table
// untouched.
func (m *Manager) Export(id, table, prefix string, t *trie.Trie) (int, error) {
	c, err := m.get(id)
	if err != nil {
		return 0, err
	}
	items, err := t.Items(prefix)
	if err != nil {
		return 0, err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: begin export")
	}
	insert := fmt.Sprintf(`INSERT INTO %s (trie_key, trie_value) VALUES (?, ?)`, table)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return 0, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: prepare export")
	}
	defer stmt.Close()

	for _, kv := range items {
		if _, err := stmt.Exec(kv.Key, kv.Value); err != nil {
			tx.Rollback()
			return 0, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: insert %q", kv.Key)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: commit export")
	}
	return len(items), nil
}

// Import reads every row of table and inserts it into t, which must already
// exist over an alphabet covering every key. Rows whose key contains a code
// point outside t's alphabet abort the whole import with UnmappedCharacter.
func (m *Manager) Import(id, table string, t *trie.Trie) (int, error) {
	c, err := m.get(id)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT trie_key, trie_value FROM %s`, table)
	rows, err := c.db.Query(query)
	if err != nil {
		return 0, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: query %s", table)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var key string
		var value int32
		if err := rows.Scan(&key, &value); err != nil {
			return n, trieerrors.Wrap(trieerrors.IoError, err, "dbsync: scan row")
		}
		if err := t.Insert(key, value); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}
