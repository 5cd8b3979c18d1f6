// Package history persists revision attempts and per-type preference
// summaries in a local SQLite database.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the tuning history database. It is not safe for concurrent
// use; the tool is a single synchronous loop and each write is one
// transaction, so a crash leaves the store consistent up to the last
// committed entry.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and runs pending
// migrations. Pass ":memory:" for an in-memory database (used by tests).
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// NextSession returns the next session number: one more than the highest
// recorded session, or 1 for an empty store.
func (s *Store) NextSession() (int64, error) {
	var max sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(session) FROM prompt_history").Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max session: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return max.Int64 + 1, nil
}

// SaveEntry appends one revision-loop step. The insert is a single
// statement, so it commits atomically.
func (s *Store) SaveEntry(e Entry) error {
	accepted := 0
	if e.Accepted {
		accepted = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO prompt_history (session, type, model, prompt, result, feedback, accepted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Session, e.Type, e.Model, e.Prompt, e.Result, e.Feedback, accepted,
	)
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// SessionEntries returns every entry of a session in insertion order.
func (s *Store) SessionEntries(session int64) ([]Entry, error) {
	return s.queryEntries(`
		SELECT id, session, type, model, prompt, result, feedback, accepted, timestamp
		FROM prompt_history WHERE session = ? ORDER BY id ASC`, session)
}

// RecentEntries returns up to limit entries, newest first.
func (s *Store) RecentEntries(limit int) ([]Entry, error) {
	return s.queryEntries(`
		SELECT id, session, type, model, prompt, result, feedback, accepted, timestamp
		FROM prompt_history ORDER BY id DESC LIMIT ?`, limit)
}

func (s *Store) queryEntries(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		var accepted int
		var ts string
		if err := rows.Scan(&e.ID, &e.Session, &e.Type, &e.Model, &e.Prompt, &e.Result, &e.Feedback, &accepted, &ts); err != nil {
			return nil, err
		}
		e.Accepted = accepted != 0
		if t, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
			e.Timestamp = t
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// SessionFeedback returns the non-empty feedback texts of a session in
// insertion order.
func (s *Store) SessionFeedback(session int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT feedback FROM prompt_history
		WHERE session = ? AND feedback != '' ORDER BY id ASC`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	return feedbacks, rows.Err()
}

// Summary returns the preference summary for a prompt type, or the empty
// string when none has been recorded.
func (s *Store) Summary(ptype string) (string, error) {
	var summary string
	err := s.db.QueryRow("SELECT summary FROM session_summary WHERE type = ?", ptype).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading summary: %w", err)
	}
	return summary, nil
}

// SaveSummary overwrites the preference summary for a prompt type.
// One row per type: insert-or-replace, never append.
func (s *Store) SaveSummary(ptype, summary string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_summary (type, summary) VALUES (?, ?)
		ON CONFLICT(type) DO UPDATE SET summary = excluded.summary`,
		ptype, summary,
	)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}
