package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS repositories (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	url                TEXT,
	types              TEXT NOT NULL,
	identifiers        TEXT NOT NULL,
	keywords           TEXT NOT NULL,
	metadata_standards TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS repository_subjects (
	repository_id TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	subject       TEXT NOT NULL,
	code          TEXT,
	PRIMARY KEY (repository_id, position)
);
CREATE INDEX IF NOT EXISTS idx_repository_subjects_code ON repository_subjects(code);
`

// SQLiteSink writes tables to an SQLite database file.
// List fields other than subjects are stored as JSON arrays.
type SQLiteSink struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteSink{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteSink) Path() string { return s.path }

// DB returns the underlying database handle.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// Write replaces the database contents with table in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, table registry.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM repository_subjects"); err != nil {
		return fmt.Errorf("clearing subjects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM repositories"); err != nil {
		return fmt.Errorf("clearing repositories: %w", err)
	}

	repoStmt, err := tx.PrepareContext(ctx, `INSERT INTO repositories
		(id, name, url, types, identifiers, keywords, metadata_standards)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer repoStmt.Close()

	subjStmt, err := tx.PrepareContext(ctx, `INSERT INTO repository_subjects
		(repository_id, position, subject, code) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer subjStmt.Close()

	for _, r := range table.Records {
		var url sql.NullString
		if r.URL != "" {
			url = sql.NullString{String: r.URL, Valid: true}
		}
		if _, err := repoStmt.ExecContext(ctx, r.ID, r.Name, url,
			jsonList(r.Types), jsonList(r.Identifiers), jsonList(r.Keywords), jsonList(r.MetadataStandards)); err != nil {
			return fmt.Errorf("inserting %s: %w", r.ID, err)
		}
		for i, raw := range r.Subjects {
			var code sql.NullString
			if s, err := subject.Decompose(raw); err == nil {
				code = sql.NullString{String: s.Code, Valid: true}
			}
			if _, err := subjStmt.ExecContext(ctx, r.ID, i, raw, code); err != nil {
				return fmt.Errorf("inserting subject of %s: %w", r.ID, err)
			}
		}
	}
	return tx.Commit()
}

func jsonList(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}
