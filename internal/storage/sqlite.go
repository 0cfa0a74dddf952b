// Package storage loads proceedings metadata into an ephemeral SQLite
// database for author statistics, the author index and search.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/proceedings/internal/author"
	"github.com/matsen/proceedings/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path. Use
// ":memory:" for a throwaway database.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps an in-memory database alive between queries.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			submission_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			session TEXT,
			first_page INTEGER,
			last_page INTEGER,
			split_file TEXT,
			ee TEXT
		);

		-- One row per author per paper, in author order
		CREATE TABLE IF NOT EXISTS authorships (
			submission_id INTEGER NOT NULL REFERENCES papers(submission_id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			sort_key TEXT NOT NULL,
			affiliation TEXT,
			PRIMARY KEY (submission_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_authorships_sort ON authorships(sort_key);

		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			submission_id UNINDEXED,
			title,
			authors_text
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the database and loads records. Records without
// bookkeeping cannot be indexed and are rejected.
func (d *DB) Rebuild(records []*paper.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"authorships", "papers", "papers_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	paperStmt, err := tx.Prepare(`
		INSERT INTO papers (submission_id, title, session, first_page, last_page, split_file, ee)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer paperStmt.Close()

	authorStmt, err := tx.Prepare(`
		INSERT INTO authorships (submission_id, position, name, sort_key, affiliation)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing authorships insert: %w", err)
	}
	defer authorStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO papers_fts (submission_id, title, authors_text) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, r := range records {
		if r.Extra == nil {
			return 0, fmt.Errorf("paper %q has no extra block", r.Title)
		}
		id := r.ID()

		var first, last sql.NullInt64
		if r.Pages != "" {
			pr, err := paper.ParsePageRange(r.Pages)
			if err != nil {
				return 0, fmt.Errorf("paper %d: %w", id, err)
			}
			first = sql.NullInt64{Int64: int64(pr.First), Valid: true}
			last = sql.NullInt64{Int64: int64(pr.Last), Valid: true}
		}

		if _, err := paperStmt.Exec(id, r.Title, r.Extra.SessionID, first, last,
			nullableStringValue(r.Extra.SplitFile), nullableStringValue(r.EE)); err != nil {
			return 0, fmt.Errorf("inserting paper %d: %w", id, err)
		}
		for i, name := range r.Authors {
			if _, err := authorStmt.Exec(id, i+1, name, author.SortKey(name),
				nullableStringValue(r.Extra.Affiliation[name])); err != nil {
				return 0, fmt.Errorf("inserting author %q of paper %d: %w", name, id, err)
			}
		}
		if _, err := ftsStmt.Exec(id, r.Title, strings.Join(r.Authors, ", ")); err != nil {
			return 0, fmt.Errorf("inserting fts for %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// Stats summarises authorship across the proceedings.
type Stats struct {
	Papers          int     `json:"papers"`
	Authorships     int     `json:"authorships"`
	UniqueAuthors   int     `json:"unique_authors"`
	AuthorsPerPaper float64 `json:"authors_per_paper"`
	UniquePerPaper  float64 `json:"unique_authors_per_paper"`
}

// Stats counts papers, authorships and distinct author names.
func (d *DB) Stats() (Stats, error) {
	var s Stats
	err := d.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM papers),
			(SELECT COUNT(*) FROM authorships),
			(SELECT COUNT(DISTINCT name) FROM authorships)
	`).Scan(&s.Papers, &s.Authorships, &s.UniqueAuthors)
	if err != nil {
		return Stats{}, fmt.Errorf("counting: %w", err)
	}
	if s.Papers > 0 {
		s.AuthorsPerPaper = float64(s.Authorships) / float64(s.Papers)
		s.UniquePerPaper = float64(s.UniqueAuthors) / float64(s.Papers)
	}
	return s, nil
}

// Hit is a search result.
type Hit struct {
	SubmissionID int    `json:"submission_id"`
	Title        string `json:"title"`
	Authors      string `json:"authors"`
}

// Search runs a full-text query over titles and author names.
func (d *DB) Search(query string, limit int) ([]Hit, error) {
	rows, err := d.db.Query(`
		SELECT submission_id, title, authors_text
		FROM papers_fts
		WHERE papers_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.SubmissionID, &h.Title, &h.Authors); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}
	return query
}
