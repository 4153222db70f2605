package notestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/models"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id      TEXT PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT ''
);
`

// SQLite stores notes in an embedded SQLite file. Ids are ObjectIDs generated
// on insert so the wire format matches the MongoDB backend.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database file and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("notestore: open sqlite: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: sqlite ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: apply sqlite schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Insert(ctx context.Context, title, content string) (string, error) {
	id := NewID()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO notes (id, title, content) VALUES (?, ?, ?)`, id, title, content)
	if err != nil {
		return "", fmt.Errorf("notestore: insert: %w", err)
	}
	return id, nil
}

func (s *SQLite) List(ctx context.Context) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, title, content FROM notes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content); err != nil {
			return nil, fmt.Errorf("notestore: scan: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, oid.Hex())
	if err != nil {
		return fmt.Errorf("notestore: delete: %w", err)
	}
	return expectOneRow(res)
}

// Update only touches the row when a value actually changes, so RowsAffected
// follows MongoDB's modified-count semantics.
func (s *SQLite) Update(ctx context.Context, id, title, content string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?
		WHERE id = ? AND (title <> ? OR content <> ?)
	`, title, content, oid.Hex(), title, content)
	if err != nil {
		return fmt.Errorf("notestore: update: %w", err)
	}
	return expectOneRow(res)
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *SQLite) Close(_ context.Context) error {
	return s.conn.Close()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notestore: rows affected: %w", err)
	}
	if n != 1 {
		return apperr.ErrNotFound
	}
	return nil
}
