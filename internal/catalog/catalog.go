// Package catalog reads the external prompts database. The database is
// produced and owned by other applications; this package opens it
// read-only and never writes to it.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned by Open when the catalog file does not exist.
var ErrUnavailable = errors.New("prompts database not found")

// ErrNotFound is returned when a lookup matches no prompt.
var ErrNotFound = errors.New("prompt not found")

// Prompt is one reusable template from the catalog.
type Prompt struct {
	ID       int64
	Tag      string
	Template string
}

// TagCount is a tag with the number of prompts carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// Store is a read-only handle on the prompts database.
type Store struct {
	db *sql.DB
}

// Open opens the prompts database at path. The file must already exist;
// the connection is read-only at the driver level.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
	}

	dsn := "file:" + path + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening prompts database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging prompts database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetByID returns the prompt with the given id.
func (s *Store) GetByID(id int64) (Prompt, error) {
	var p Prompt
	err := s.db.QueryRow("SELECT id, template, tag FROM prompts WHERE id = ?", id).
		Scan(&p.ID, &p.Template, &p.Tag)
	if err == sql.ErrNoRows {
		return Prompt{}, ErrNotFound
	}
	if err != nil {
		return Prompt{}, fmt.Errorf("loading prompt %d: %w", id, err)
	}
	return p, nil
}

// GetByTag returns all prompts carrying tag, newest first. The result may
// be empty.
func (s *Store) GetByTag(tag string) ([]Prompt, error) {
	rows, err := s.db.Query("SELECT id, template, tag FROM prompts WHERE tag = ? ORDER BY id DESC", tag)
	if err != nil {
		return nil, fmt.Errorf("loading prompts for tag %q: %w", tag, err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Template, &p.Tag); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// Latest returns the most recent prompt carrying tag.
func (s *Store) Latest(tag string) (Prompt, error) {
	var p Prompt
	err := s.db.QueryRow(
		"SELECT id, template, tag FROM prompts WHERE tag = ? ORDER BY id DESC LIMIT 1", tag).
		Scan(&p.ID, &p.Template, &p.Tag)
	if err == sql.ErrNoRows {
		return Prompt{}, ErrNotFound
	}
	if err != nil {
		return Prompt{}, fmt.Errorf("loading latest prompt for tag %q: %w", tag, err)
	}
	return p, nil
}

// PickRandom selects one prompt uniformly from candidates.
// Panics on an empty slice, like indexing would.
func PickRandom(candidates []Prompt) Prompt {
	return candidates[rand.IntN(len(candidates))]
}

// Variables returns the stored variable set for a prompt, which may be
// empty.
func (s *Store) Variables(promptID int64) (map[string]string, error) {
	rows, err := s.db.Query("SELECT var_name, var_value FROM prompt_variables WHERE prompt_id = ?", promptID)
	if err != nil {
		return nil, fmt.Errorf("loading variables for prompt %d: %w", promptID, err)
	}
	defer rows.Close()

	vars := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		vars[name] = value
	}
	return vars, rows.Err()
}

// ListAll returns every prompt in the catalog, newest first.
func (s *Store) ListAll() ([]Prompt, error) {
	rows, err := s.db.Query("SELECT id, tag, template FROM prompts ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Tag, &p.Template); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// ListTags returns the distinct non-empty tags with their prompt counts,
// most used first, ties broken alphabetically.
func (s *Store) ListTags() ([]TagCount, error) {
	rows, err := s.db.Query(`
		SELECT tag, COUNT(*) AS count
		FROM prompts
		WHERE tag IS NOT NULL AND tag != ''
		GROUP BY tag
		ORDER BY count DESC, tag ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}
