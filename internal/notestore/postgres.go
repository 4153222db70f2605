package notestore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/models"
)

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	seq BIGSERIAL,
	id  TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
`

// Postgres stores each note as a JSONB document keyed by an ObjectID.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres creates a connection pool, pings it and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("notestore: postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("notestore: postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("notestore: apply postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Insert(ctx context.Context, title, content string) (string, error) {
	id := NewID()
	_, err := p.pool.Exec(ctx, `
		INSERT INTO notes (id, doc)
		VALUES ($1, jsonb_build_object('title', $2::text, 'content', $3::text))
	`, id, title, content)
	if err != nil {
		return "", fmt.Errorf("notestore: insert: %w", err)
	}
	return id, nil
}

func (p *Postgres) List(ctx context.Context) ([]models.Note, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, COALESCE(doc->>'title', ''), COALESCE(doc->>'content', '')
		FROM notes ORDER BY seq
	`)
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

func (p *Postgres) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, oid.Hex())
	if err != nil {
		return fmt.Errorf("notestore: delete: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return apperr.ErrNotFound
	}
	return nil
}

// Update merges title and content into the document, skipping rows whose
// values are already identical.
func (p *Postgres) Update(ctx context.Context, id, title, content string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE notes
		SET doc = doc || jsonb_build_object('title', $2::text, 'content', $3::text)
		WHERE id = $1
		  AND (doc->>'title', doc->>'content') IS DISTINCT FROM ($2::text, $3::text)
	`, oid.Hex(), title, content)
	if err != nil {
		return fmt.Errorf("notestore: update: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return apperr.ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close(_ context.Context) error {
	p.pool.Close()
	return nil
}
