package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added tag/note_tag tables
const currentSchemaVersion = 1

// Store provides transactional storage for workspaces, papers, notes,
// and the search index. All operations serialize behind one mutex; see
// the package documentation.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger

	// Injectable for deterministic tests.
	now   func() string
	newID func() string
}

// Option customizes a Store at open time.
type Option func(*Store)

// WithLogger attaches a structured logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock overrides the timestamp source. The function must return an
// RFC 3339 string.
func WithClock(now func() string) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource overrides the identifier mint.
func WithIDSource(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open creates or opens a SQLite database at the given path, applies
// required pragmas and migrations, and seeds the default workspace.
// Idempotent: safe to call against an existing database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// also keeps the mutex the sole serialization point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:    db,
		log:   zap.NewNop(),
		now:   nowISO,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.seedDefaultWorkspace(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed default workspace: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// nowISO is the default clock: RFC 3339 in UTC.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// withTx runs fn inside a single transaction while holding the store
// lock. Any error from fn rolls the whole unit back; commit errors are
// surfaced as db_error. fn must not retain the *sql.Tx.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DBError(fmt.Errorf("%s: begin tx: %w", op, err))
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.DBError(fmt.Errorf("%s: commit: %w", op, err))
	}
	return nil
}

// lock acquires the store lock for read-only operations that bypass an
// explicit transaction.
func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// seedDefaultWorkspace guarantees the reserved workspace row exists.
func (s *Store) seedDefaultWorkspace() error {
	now := s.now()
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO workspace (id, name, createdAt, updatedAt)
		VALUES (?, 'Default Workspace', ?, ?)
	`, domain.DefaultWorkspaceID, now, now)
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the tag tables for databases created before tags
// existed. New databases get these from schema.sql; CREATE TABLE IF NOT
// EXISTS makes this a no-op there.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tag (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL UNIQUE,
			color     TEXT,
			createdAt TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS note_tag (
			noteId TEXT NOT NULL REFERENCES note(id) ON DELETE CASCADE,
			tagId  TEXT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
			PRIMARY KEY (noteId, tagId)
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
