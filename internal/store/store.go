// Package store owns the durable state of timetrax: the work-item catalog,
// the work session event log, the expected-time ledger and a small key/value
// table, all kept in one SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"

	"github.com/sadopc/timetrax/internal/clock"
	"github.com/sadopc/timetrax/internal/logging"
)

const currentVersion = 1

// AppName is used for the default data directory.
const AppName = "timetrax"

type Store struct {
	db     *sql.DB
	clock  clock.Clock
	loc    *time.Location
	logger *slog.Logger

	seedItems []string
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Store at open time.
type Option func(*Store)

// WithClock sets the clock used to timestamp writes and to decide "today".
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLocation sets the location whose calendar defines day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithLogger sets the logger for recovery and teardown messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSeedItems adds work items on open if they do not exist yet.
func WithSeedItems(names ...string) Option {
	return func(s *Store) { s.seedItems = append(s.seedItems, names...) }
}

func newStore(db *sql.DB, opts []Option) *Store {
	s := &Store{
		db:     db,
		clock:  clock.System{},
		loc:    time.Local,
		logger: logging.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (or creates) the SQLite database at dbPath, applies the schema,
// seeds default work items and repairs a session left open by an unclean
// shutdown on a previous day.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := newStore(db, opts)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	for _, name := range s.seedItems {
		if _, err := s.AddWorkItem(name); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := s.recover(); err != nil {
		db.Close()
		return nil, fmt.Errorf("recover: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return Open(":memory:", opts...)
}

// Close records the shutdown instant and releases the database. Only the
// first call does anything. A failed shutdown write is logged, not returned:
// recovery simply gets one more chance to repair on the next open.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if err := s.RecordShutdown(); err != nil {
			s.logger.Warn("record shutdown failed", logging.KeyError, err)
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// Now returns the store clock's current instant.
func (s *Store) Now() time.Time { return s.clock.Now() }

// Location is the location whose calendar defines day boundaries.
func (s *Store) Location() *time.Location { return s.loc }

// Today is the local calendar date of Now.
func (s *Store) Today() civil.Date {
	return civil.DateOf(s.clock.Now().In(s.loc))
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS work_items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT,
		visible     INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS work_times (
		start     TEXT NOT NULL UNIQUE,
		work_item INTEGER REFERENCES work_items(id)
	);

	CREATE TABLE IF NOT EXISTS expected_time (
		date    TEXT PRIMARY KEY,
		seconds INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS key_value (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO key_value (key, value) VALUES
		('default_time', '28800');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns $XDG_DATA_HOME/timetrax/work.db
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "work.db")
}

// dayBounds returns the half-open UTC range [from, to) covering date in loc,
// formatted the way start timestamps are stored.
func (s *Store) dayBounds(date civil.Date) (string, string) {
	from := date.In(s.loc)
	to := date.AddDays(1).In(s.loc)
	return formatTime(from), formatTime(to)
}

// Timestamps are stored as fixed-width RFC 3339 UTC text so that string
// order is time order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
