// Package store persists registry snapshots in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chazu/reify/dist"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound indicates the requested snapshot doesn't exist.
var ErrSnapshotNotFound = errors.New("store: snapshot not found")

var log = commonlog.GetLogger("reify.store")

// Entry describes a stored snapshot without decoding it.
type Entry struct {
	Name    string
	Session uuid.UUID
	Created time.Time
	Size    int
}

// Store handles SQLite storage for snapshots.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		session TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}

	log.Debugf("opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores snap under name, replacing any snapshot already there.
func (s *Store) Save(ctx context.Context, name string, snap *dist.Snapshot) error {
	data, err := dist.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (name, session, created_at, data) VALUES (?, ?, ?, ?)",
		name, snap.Session.String(), time.Now().UnixNano(), data,
	)
	if err != nil {
		return fmt.Errorf("store: saving %s: %w", name, err)
	}
	log.Debugf("saved %s (%d bytes, session %s)", name, len(data), snap.Session)
	return nil
}

// Load retrieves the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (*dist.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, fmt.Errorf("store: querying %s: %w", name, err)
	}

	snap, err := dist.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", name, err)
	}
	return snap, nil
}

// List returns every stored snapshot, ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, session, created_at, length(data) FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: listing: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			session string
			created int64
		)
		if err := rows.Scan(&e.Name, &session, &created, &e.Size); err != nil {
			return nil, fmt.Errorf("store: listing: %w", err)
		}
		e.Session, err = uuid.Parse(session)
		if err != nil {
			return nil, fmt.Errorf("store: snapshot %s has bad session %q: %w", e.Name, session, err)
		}
		e.Created = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing: %w", err)
	}
	return entries, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	return nil
}
