package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrRevisionConflict is returned by Save when the stored record moved on
// since it was loaded.
var ErrRevisionConflict = errors.New("revision conflict")

// Store holds a SQL connection and the ent driver used to build and run
// dialect-specific statements.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	return OpenDialect("sqlite", dsn)
}

// OpenDialect connects to a sqlite, postgres or mysql database.
func OpenDialect(kind, dsn string) (*Store, error) {
	var driverName, dia string
	switch strings.ToLower(kind) {
	case "sqlite", "sqlite3", "":
		driverName, dia = "sqlite", dialect.SQLite
	case "postgres", "postgresql":
		driverName, dia = "postgres", dialect.Postgres
	case "mysql":
		driverName, dia = "mysql", dialect.MySQL
	default:
		return nil, fmt.Errorf("unsupported database type: %s", kind)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := configure(db, dia); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure connection: %w", err)
	}

	s := &Store{db: db, drv: entsql.OpenDB(dia, db), dialect: dia}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Profiles returns a profile repository backed by this store.
func (s *Store) Profiles() *ProfileRepo {
	return &ProfileRepo{store: s, now: time.Now}
}

// Sessions returns an active-session repository backed by this store.
func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{store: s, now: time.Now}
}

// Results returns a latest-result repository backed by this store.
func (s *Store) Results() *ResultRepo {
	return &ResultRepo{store: s, now: time.Now}
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

func (s *Store) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(s.dialect) {
		if _, err := s.exec(ctx, stmt, []any{}); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func schemaFor(dia string) []string {
	switch dia {
	case dialect.Postgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS profiles (user_id BIGINT PRIMARY KEY, data TEXT NOT NULL, revision BIGINT NOT NULL DEFAULT 0, updated_at BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS results (user_id BIGINT PRIMARY KEY, data TEXT NOT NULL, updated_at BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS sessions (user_id BIGINT PRIMARY KEY, session_id VARCHAR(64) NOT NULL, data TEXT NOT NULL, revision BIGINT NOT NULL DEFAULT 0, updated_at BIGINT NOT NULL)`,
		}
	case dialect.MySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS profiles (user_id BIGINT PRIMARY KEY, data LONGTEXT NOT NULL, revision BIGINT NOT NULL DEFAULT 0, updated_at BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS results (user_id BIGINT PRIMARY KEY, data LONGTEXT NOT NULL, updated_at BIGINT NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS sessions (user_id BIGINT PRIMARY KEY, session_id VARCHAR(64) NOT NULL, data LONGTEXT NOT NULL, revision BIGINT NOT NULL DEFAULT 0, updated_at BIGINT NOT NULL)`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS profiles (user_id INTEGER PRIMARY KEY, data TEXT NOT NULL, revision INTEGER NOT NULL DEFAULT 0, updated_at INTEGER NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS results (user_id INTEGER PRIMARY KEY, data TEXT NOT NULL, updated_at INTEGER NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS sessions (user_id INTEGER PRIMARY KEY, session_id TEXT NOT NULL, data TEXT NOT NULL, revision INTEGER NOT NULL DEFAULT 0, updated_at INTEGER NOT NULL)`,
		}
	}
}

func configure(db *sql.DB, dia string) error {
	switch dia {
	case dialect.SQLite:
		return applyPragmas(db)
	case dialect.MySQL:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	case dialect.Postgres:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(time.Minute)
	}
	return db.Ping()
}

// applyPragmas configures SQLite for a single-writer deployment.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZMENTOR_DB environment variable
// 2. $XDG_DATA_HOME/quizmentor/quizmentor.db
// 3. ~/.local/share/quizmentor/quizmentor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZMENTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome, err := dataHome()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dataHome, "quizmentor", "quizmentor.db")
	return p, EnsureDir(p)
}

// DefaultProfileDir is where the file store keeps profile blobs.
func DefaultProfileDir() (string, error) {
	dataHome, err := dataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataHome, "quizmentor", "profiles"), nil
}

func dataHome() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
